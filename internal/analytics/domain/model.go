package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/statement"
	"github.com/shopspring/decimal"
)

// Filter narrows a report. A zero PropertyID means every property; zero
// bounds leave the date range open.
type Filter struct {
	PropertyID snowflake.ID
	Start      time.Time
	End        time.Time
}

func (f Filter) HasProperty() bool { return f.PropertyID != 0 }

func ParseReportType(value string) (statement.ReportType, error) {
	switch t := statement.ReportType(strings.ToLower(strings.TrimSpace(value))); t {
	case statement.ReportFinancial, statement.ReportOccupancy, statement.ReportUtility, statement.ReportTenant:
		return t, nil
	default:
		return "", ErrUnknownReport
	}
}

type PropertyFinancials struct {
	PropertyID   *snowflake.ID
	PropertyName *string
	PaymentCount int64
	Collected    decimal.Decimal
	Pending      decimal.Decimal
}

type OutstandingInvoices struct {
	InvoiceCount int64
	Amount       decimal.Decimal
}

type PropertyOccupancy struct {
	PropertyID   snowflake.ID
	PropertyName string
	Units        int64
	Occupied     int64
}

func (o PropertyOccupancy) Vacant() int64 {
	if o.Occupied >= o.Units {
		return 0
	}
	return o.Units - o.Occupied
}

type UtilityMonth struct {
	PropertyID    snowflake.ID
	PropertyName  string
	BillingMonth  time.Time
	Bills         int64
	UnitsConsumed decimal.Decimal
	TotalAmount   decimal.Decimal
}

type TenantRow struct {
	TenantID     snowflake.ID
	Name         string
	Phone        *string
	Email        *string
	IsActive     bool
	UnitNumber   *string
	PropertyName *string
}
