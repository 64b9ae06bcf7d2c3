package statement

import (
	"time"
)

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// gridSize is the number of layout columns across a page.
const gridSize = 12

type Column struct {
	Header string
	Span   int
	Align  Align
}

type Table struct {
	Columns []Column
	Rows    [][]string
	Footer  []string
}

type Field struct {
	Label string
	Value string
}

type Letterhead struct {
	Name    string
	Address string
	Contact string
}

// Layout is the format-neutral description of a document.
type Layout struct {
	Letterhead Letterhead
	Title      string
	Mark       string
	Meta       []Field
	Parties    []Field
	Details    []Field
	Table      *Table
	Summary    []Field
	Total      *Field
	Footer     []string
	Landscape  bool
}

type layoutEnv struct {
	fmt        formatter
	letterhead Letterhead
	now        time.Time
}

func (e layoutEnv) generated() Field {
	return Field{Label: "Generated", Value: e.fmt.Date(e.now)}
}

func buildUtilityBillBatch(env layoutEnv, p UtilityBillBatch) Layout {
	property := orPlaceholder(p.PropertyName, UnknownProperty)
	table := &Table{
		Columns: []Column{
			{Header: "#", Span: 1, Align: AlignCenter},
			{Header: "Unit No.", Span: 1, Align: AlignLeft},
			{Header: "Tenant", Span: 2, Align: AlignLeft},
			{Header: "Arrears B/F", Span: 1, Align: AlignRight},
			{Header: "Prev Reading", Span: 1, Align: AlignRight},
			{Header: "Curr Reading", Span: 1, Align: AlignRight},
			{Header: "Units Used", Span: 1, Align: AlignRight},
			{Header: "Rate", Span: 2, Align: AlignRight},
			{Header: "Total Amount", Span: 2, Align: AlignRight},
		},
	}
	for i, line := range p.Lines {
		table.Rows = append(table.Rows, []string{
			itoa(i + 1),
			orPlaceholder(line.UnitNumber, NotAvailable),
			orPlaceholder(line.TenantName, Vacant),
			env.fmt.Money(line.ArrearsBF),
			env.fmt.Quantity(line.PreviousReading),
			env.fmt.OptionalQuantity(line.CurrentReading),
			env.fmt.Quantity(line.UnitsConsumed),
			env.fmt.Money(line.Rate),
			env.fmt.Money(line.TotalAmount),
		})
	}
	table.Footer = []string{"", "", "TOTAL", "", "", "", env.fmt.Quantity(p.TotalUnits), "", env.fmt.Money(p.TotalAmount)}

	return Layout{
		Letterhead: env.letterhead,
		Title:      "UTILITY BILLING STATEMENT - " + property,
		Meta: []Field{
			{Label: "Billing Period", Value: periodLabel(p.Period)},
			{Label: "Rate", Value: env.fmt.Amount(p.Rate) + " per unit"},
			env.generated(),
		},
		Table: table,
		Summary: []Field{
			{Label: "Total Units Consumed", Value: env.fmt.Quantity(p.TotalUnits)},
			{Label: "Total Amount", Value: env.fmt.Amount(p.TotalAmount)},
		},
		Footer:    []string{"Generated by Estate Management System"},
		Landscape: true,
	}
}

func buildUtilityBillSingle(env layoutEnv, p UtilityBillSingle) Layout {
	line := p.Line
	return Layout{
		Letterhead: env.letterhead,
		Title:      "UTILITY BILL",
		Meta: []Field{
			{Label: "Billing Period", Value: periodLabel(p.Period)},
			env.generated(),
		},
		Parties: []Field{
			{Label: "Property", Value: orPlaceholder(p.PropertyName, UnknownProperty)},
			{Label: "Unit", Value: orPlaceholder(line.UnitNumber, NotAvailable)},
			{Label: "Tenant", Value: orPlaceholder(line.TenantName, Vacant)},
		},
		Details: []Field{
			{Label: "Arrears Brought Forward", Value: env.fmt.Amount(line.ArrearsBF)},
			{Label: "Previous Reading", Value: env.fmt.Quantity(line.PreviousReading)},
			{Label: "Current Reading", Value: env.fmt.OptionalQuantity(line.CurrentReading)},
			{Label: "Units Consumed", Value: env.fmt.Quantity(line.UnitsConsumed)},
			{Label: "Rate per Unit", Value: env.fmt.Amount(line.Rate)},
			{Label: "Current Charge", Value: env.fmt.Amount(line.TotalAmount)},
		},
		Total:  &Field{Label: "Total Amount Due", Value: env.fmt.Amount(line.AmountDue)},
		Footer: []string{"Thank you for your business"},
	}
}

func buildInvoice(env layoutEnv, p Invoice) Layout {
	return Layout{
		Letterhead: env.letterhead,
		Title:      "INVOICE",
		Meta: []Field{
			{Label: "Invoice", Value: "#" + InvoiceShortID(p.InvoiceID)},
			{Label: "Generated on", Value: env.fmt.Date(env.now)},
		},
		Parties: []Field{
			{Label: "Billed To", Value: orPlaceholder(p.TenantName, UnknownTenant)},
			{Label: "Unit", Value: orPlaceholder(p.UnitNumber, NotAvailable)},
			{Label: "Property", Value: orPlaceholder(p.PropertyName, UnknownProperty)},
		},
		Table: &Table{
			Columns: []Column{
				{Header: "Invoice ID", Span: 2, Align: AlignLeft},
				{Header: "Type", Span: 3, Align: AlignLeft},
				{Header: "Amount", Span: 3, Align: AlignRight},
				{Header: "Due Date", Span: 2, Align: AlignCenter},
				{Header: "Created At", Span: 2, Align: AlignCenter},
			},
			Rows: [][]string{{
				InvoiceShortID(p.InvoiceID),
				orPlaceholder(p.InvoiceType, NotAvailable),
				env.fmt.Amount(p.Amount),
				env.fmt.Date(p.DueDate),
				env.fmt.Date(p.CreatedAt),
			}},
		},
		Total:  &Field{Label: "Total", Value: env.fmt.Amount(p.Amount)},
		Footer: []string{"Thank you for your business!"},
	}
}

func buildPaymentReceipt(env layoutEnv, p PaymentReceipt) Layout {
	return Layout{
		Letterhead: env.letterhead,
		Title:      "PAYMENT RECEIPT",
		Mark:       "ORIGINAL",
		Meta: []Field{
			{Label: "Receipt No", Value: ReceiptNumber(p.PaymentID)},
			{Label: "Date", Value: env.fmt.Date(p.PaymentDate)},
		},
		Details: []Field{
			{Label: "Tenant", Value: orPlaceholder(p.TenantName, UnknownTenant)},
			{Label: "Property", Value: orPlaceholder(p.PropertyName, UnknownProperty)},
			{Label: "Amount", Value: env.fmt.Amount(p.Amount)},
			{Label: "Payment Date", Value: env.fmt.Date(p.PaymentDate)},
			{Label: "Method", Value: orPlaceholder(p.Method, NotAvailable)},
			{Label: "Status", Value: orPlaceholder(p.Status, NotAvailable)},
			{Label: "Notes", Value: orPlaceholder(p.Notes, NotAvailable)},
		},
		Total:  &Field{Label: "Total", Value: env.fmt.Amount(p.Amount)},
		Footer: []string{"Thank you for your payment", "Generated on " + env.fmt.Date(env.now)},
	}
}

func buildTenantStatement(env layoutEnv, p TenantStatement) Layout {
	table := &Table{
		Columns: []Column{
			{Header: "#", Span: 1, Align: AlignCenter},
			{Header: "Payment Date", Span: 2, Align: AlignCenter},
			{Header: "Amount", Span: 3, Align: AlignRight},
			{Header: "Method", Span: 2, Align: AlignLeft},
			{Header: "Status", Span: 2, Align: AlignLeft},
			{Header: "Notes", Span: 2, Align: AlignLeft},
		},
	}
	for i, entry := range p.Entries {
		table.Rows = append(table.Rows, []string{
			itoa(i + 1),
			env.fmt.Date(entry.PaymentDate),
			env.fmt.Money(entry.Amount),
			orPlaceholder(entry.Method, NotAvailable),
			orPlaceholder(entry.Status, NotAvailable),
			orPlaceholder(entry.Notes, NotAvailable),
		})
	}
	table.Footer = []string{"", "TOTAL PAID", env.fmt.Money(p.TotalPaid), "", "", ""}

	var summary []Field
	if p.TotalPending.IsPositive() {
		summary = append(summary, Field{Label: "Pending Confirmation", Value: env.fmt.Amount(p.TotalPending)})
	}

	return Layout{
		Letterhead: env.letterhead,
		Title:      "TENANT STATEMENT",
		Meta:       []Field{env.generated()},
		Parties: []Field{
			{Label: "Tenant", Value: orPlaceholder(p.TenantName, UnknownTenant)},
			{Label: "Unit", Value: orPlaceholder(p.UnitNumber, NotAvailable)},
			{Label: "Property", Value: orPlaceholder(p.PropertyName, UnknownProperty)},
		},
		Table:   table,
		Summary: summary,
		Total:   &Field{Label: "Total Paid", Value: env.fmt.Amount(p.TotalPaid)},
		Footer:  []string{"Generated by Estate Management System"},
	}
}

func buildAnalyticsReport(env layoutEnv, p AnalyticsReport) Layout {
	title := orPlaceholder(p.Title, ReportTitle(p.Type))
	meta := []Field{env.generated()}
	if !p.PeriodStart.IsZero() || !p.PeriodEnd.IsZero() {
		meta = append(meta, Field{Label: "Period", Value: env.fmt.Date(p.PeriodStart) + " - " + env.fmt.Date(p.PeriodEnd)})
	}

	summary := make([]Field, 0, len(p.Summary))
	for _, item := range p.Summary {
		summary = append(summary, Field{Label: item.Label, Value: env.fmt.Value(item.Value)})
	}

	table := &Table{Columns: spreadColumns(p.Columns)}
	for _, row := range p.Rows {
		cells := make([]string, 0, len(row))
		for _, v := range row {
			cells = append(cells, env.fmt.Value(v))
		}
		table.Rows = append(table.Rows, cells)
	}

	return Layout{
		Letterhead: env.letterhead,
		Title:      title + " - Estate Management System",
		Meta:       meta,
		Summary:    summary,
		Table:      table,
		Footer:     []string{"Generated by Estate Management System"},
		Landscape:  len(p.Columns) > 6,
	}
}

// spreadColumns splits the grid evenly; the remainder goes to the rightmost columns.
func spreadColumns(headers []string) []Column {
	if len(headers) == 0 {
		return nil
	}
	cols := make([]Column, len(headers))
	base := gridSize / len(headers)
	if base == 0 {
		base = 1
	}
	rest := gridSize - base*len(headers)
	for i, h := range headers {
		cols[i] = Column{Header: h, Span: base, Align: AlignLeft}
		if h == "#" {
			cols[i].Align = AlignCenter
		}
	}
	for i := len(cols) - 1; rest > 0 && i >= 0; i-- {
		cols[i].Span++
		rest--
	}
	return cols
}

func periodLabel(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format("January 2006")
}
