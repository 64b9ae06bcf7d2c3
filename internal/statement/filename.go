package statement

import (
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// ReceiptNumber is "R" plus the last three characters of the payment id,
// left-padded with zeros. Display only; it is not unique.
func ReceiptNumber(paymentID string) string {
	id := strings.TrimSpace(paymentID)
	if len(id) > 3 {
		id = id[len(id)-3:]
	}
	return "R" + strings.Repeat("0", 3-len(id)) + id
}

// InvoiceShortID is the last four characters of the invoice id.
func InvoiceShortID(invoiceID string) string {
	id := strings.TrimSpace(invoiceID)
	if len(id) > 4 {
		return id[len(id)-4:]
	}
	if id == "" {
		return NotAvailable
	}
	return id
}

func ReportTitle(t ReportType) string {
	switch t {
	case ReportFinancial:
		return "Financial Report"
	case ReportOccupancy:
		return "Occupancy Report"
	case ReportUtility:
		return "Utility Report"
	case ReportTenant:
		return "Tenant Report"
	}
	return "Report"
}

func fileToken(value string) string {
	token := slug.Make(value)
	if token == "" {
		return "unknown"
	}
	return token
}

func filename(req Request, now time.Time) string {
	base := "document"
	switch p := req.Payload.(type) {
	case UtilityBillBatch:
		base = "utility-bills-" + fileToken(p.PropertyName) + "-" + p.Period.Format("2006-01")
	case UtilityBillSingle:
		base = "utility-bill-unit-" + fileToken(p.Line.UnitNumber) + "-" + p.Period.Format("2006-01")
	case Invoice:
		base = "invoice_" + InvoiceShortID(p.InvoiceID)
	case PaymentReceipt:
		base = "receipt_" + ReceiptNumber(p.PaymentID)
	case TenantStatement:
		base = "tenant-statement-" + fileToken(p.TenantName)
	case AnalyticsReport:
		title := strings.TrimSpace(p.Title)
		if title == "" {
			title = ReportTitle(p.Type)
		}
		base = strings.ReplaceAll(title, " ", "_") + "_" + now.Format("2006-01-02")
	}
	return base + "." + string(req.Format)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
