package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Placeholders used when a joined record is missing.
const (
	UnknownTenant   = "Unknown Tenant"
	UnknownProperty = "Unknown Property"
	NotAvailable    = "N/A"
	Vacant          = "Vacant"
)

type UtilityBillLine struct {
	UnitNumber      string
	TenantName      string
	ArrearsBF       decimal.Decimal
	PreviousReading decimal.Decimal
	CurrentReading  *decimal.Decimal
	UnitsConsumed   decimal.Decimal
	Rate            decimal.Decimal
	TotalAmount     decimal.Decimal
	AmountDue       decimal.Decimal
}

type UtilityBillBatch struct {
	PropertyName string
	Period       time.Time
	Rate         decimal.Decimal
	Lines        []UtilityBillLine
	TotalUnits   decimal.Decimal
	TotalAmount  decimal.Decimal
}

type UtilityBillSingle struct {
	PropertyName string
	Period       time.Time
	Line         UtilityBillLine
}

type Invoice struct {
	InvoiceID    string
	TenantName   string
	UnitNumber   string
	PropertyName string
	InvoiceType  string
	Amount       decimal.Decimal
	DueDate      time.Time
	CreatedAt    time.Time
}

type PaymentReceipt struct {
	PaymentID    string
	TenantName   string
	PropertyName string
	Amount       decimal.Decimal
	PaymentDate  time.Time
	Method       string
	Status       string
	Notes        string
}

type StatementEntry struct {
	PaymentDate time.Time
	Amount      decimal.Decimal
	Method      string
	Status      string
	Notes       string
}

type TenantStatement struct {
	TenantName   string
	UnitNumber   string
	PropertyName string
	Entries      []StatementEntry
	// TotalPaid counts completed payments only. Pending amounts are shown
	// separately and failed ones are listed but not totalled.
	TotalPaid    decimal.Decimal
	TotalPending decimal.Decimal
}

type ReportType string

const (
	ReportFinancial ReportType = "financial"
	ReportOccupancy ReportType = "occupancy"
	ReportUtility   ReportType = "utility"
	ReportTenant    ReportType = "tenant"
)

type ValueKind string

const (
	ValueText     ValueKind = "text"
	ValueCount    ValueKind = "count"
	ValueMoney    ValueKind = "money"
	ValueQuantity ValueKind = "quantity"
	ValuePercent  ValueKind = "percent"
	ValueDate     ValueKind = "date"
)

// Value is a typed cell. The renderer formats it but never derives it.
type Value struct {
	Kind   ValueKind
	Text   string
	Number decimal.Decimal
	Date   time.Time
}

func Text(s string) Value { return Value{Kind: ValueText, Text: s} }
func Count(n int64) Value { return Value{Kind: ValueCount, Number: decimal.NewFromInt(n)} }
func Money(d decimal.Decimal) Value { return Value{Kind: ValueMoney, Number: d} }
func Quantity(d decimal.Decimal) Value { return Value{Kind: ValueQuantity, Number: d} }
func Percent(d decimal.Decimal) Value { return Value{Kind: ValuePercent, Number: d} }
func Date(t time.Time) Value { return Value{Kind: ValueDate, Date: t} }

type SummaryItem struct {
	Label string
	Value Value
}

type AnalyticsReport struct {
	Type        ReportType
	Title       string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Summary     []SummaryItem
	Columns     []string
	Rows        [][]Value
}
