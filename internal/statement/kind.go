package statement

import (
	"errors"
)

type Kind string

const (
	KindUtilityBillBatch  Kind = "utility_bill_batch"
	KindUtilityBillSingle Kind = "utility_bill_single"
	KindInvoice           Kind = "invoice"
	KindPaymentReceipt    Kind = "payment_receipt"
	KindTenantStatement   Kind = "tenant_statement"
	KindAnalyticsReport   Kind = "analytics_report"
)

type Format string

const (
	FormatPDF Format = "pdf"
	FormatCSV Format = "csv"
)

func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", ErrUnsupportedFormat
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/pdf"
}

var (
	ErrUnsupportedKind   = errors.New("unsupported_document_kind")
	ErrUnsupportedFormat = errors.New("unsupported_document_format")
	ErrPayloadMismatch   = errors.New("document_payload_mismatch")
)

// Request pairs a document kind with its payload. Payload must be the struct
// matching Kind, e.g. UtilityBillBatch for KindUtilityBillBatch.
type Request struct {
	Kind    Kind
	Format  Format
	Payload any
}

type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}
