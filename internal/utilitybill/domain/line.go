package domain

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Scales of the utility_bills columns. Readings and money are numeric(14,2),
// the rate numeric(14,4).
const (
	moneyPlaces   = 2
	ReadingPlaces = 2
	RatePlaces    = 4
)

// CheckScale rejects values the database column would round. Trailing zeros
// beyond the scale are fine.
func CheckScale(d decimal.Decimal, places int32) error {
	if !d.Round(places).Equal(d) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrTooPrecise, d.String(), places)
	}
	return nil
}

// Computation is the derived part of a bill line.
type Computation struct {
	UnitsConsumed decimal.Decimal
	TotalAmount   decimal.Decimal
	// Regression is set when the current reading is below the previous one.
	// UnitsConsumed is clamped to zero in that case.
	Regression bool
}

// Compute derives consumption and charge. A missing current reading or a
// non-positive rate yields a zero charge. The charge is consumed*rate rounded
// half away from zero to cents; with readings at two places it is exact
// whenever the rate has at most two places.
func Compute(previous decimal.Decimal, current *decimal.Decimal, rate decimal.Decimal) Computation {
	if current == nil {
		return Computation{UnitsConsumed: decimal.Zero, TotalAmount: decimal.Zero}
	}

	out := Computation{UnitsConsumed: current.Sub(previous)}
	if out.UnitsConsumed.IsNegative() {
		out.UnitsConsumed = decimal.Zero
		out.Regression = true
	}
	if rate.IsPositive() {
		out.TotalAmount = out.UnitsConsumed.Mul(rate).Round(moneyPlaces)
	} else {
		out.TotalAmount = decimal.Zero
	}
	return out
}

// Line is one unit's draft bill inside a billing session.
type Line struct {
	BillID  snowflake.ID `json:"bill_id,omitempty"`
	Version int64        `json:"version,omitempty"`

	UnitID     snowflake.ID `json:"unit_id"`
	UnitNumber string       `json:"unit_number"`
	TenantName string       `json:"tenant_name"`

	ArrearsBF       decimal.Decimal  `json:"arrears_bf"`
	PreviousReading decimal.Decimal  `json:"previous_reading"`
	CurrentReading  *decimal.Decimal `json:"current_reading"`
	UnitsConsumed   decimal.Decimal  `json:"units_consumed"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Regression      bool             `json:"reading_regression,omitempty"`
	Warnings        []Warning        `json:"warnings,omitempty"`
}

// Persisted reports whether the line already has a stored bill.
func (l Line) Persisted() bool { return l.BillID != 0 }

// AmountDue is the arrears brought forward plus this period's charge.
func (l Line) AmountDue() decimal.Decimal {
	return l.ArrearsBF.Add(l.TotalAmount)
}

func (l *Line) Recompute(rate decimal.Decimal) {
	c := Compute(l.PreviousReading, l.CurrentReading, rate)
	l.UnitsConsumed = c.UnitsConsumed
	l.TotalAmount = c.TotalAmount
	l.Regression = c.Regression
}

func (l Line) Clone() Line {
	out := l
	if l.CurrentReading != nil {
		v := *l.CurrentReading
		out.CurrentReading = &v
	}
	if l.Warnings != nil {
		out.Warnings = append([]Warning(nil), l.Warnings...)
	}
	return out
}

// LineFromBill builds an edit-mode line from a stored bill.
func LineFromBill(b UtilityBill, unitNumber, tenantName string) Line {
	current := b.CurrentReading
	return Line{
		BillID:          b.ID,
		Version:         b.Version,
		UnitID:          b.UnitID,
		UnitNumber:      unitNumber,
		TenantName:      tenantName,
		ArrearsBF:       b.ArrearsBF,
		PreviousReading: b.PreviousReading,
		CurrentReading:  &current,
		UnitsConsumed:   b.UnitsConsumed,
		TotalAmount:     b.TotalAmount,
	}
}

type WarningCode string

const (
	WarningPreviousReadingUnavailable WarningCode = "previous_reading_unavailable"
	WarningRateDivergence             WarningCode = "rate_divergence"
	WarningReadingRegression          WarningCode = "reading_regression"
)

type Warning struct {
	Code       WarningCode  `json:"code"`
	UnitID     snowflake.ID `json:"unit_id,omitempty"`
	UnitNumber string       `json:"unit_number,omitempty"`
	Message    string       `json:"message"`
}

// LoadResult is what the period store hands back to a session.
type LoadResult struct {
	Mode         Mode
	PropertyName string
	Rate         decimal.Decimal
	Lines        []Line
	Warnings     []Warning
}
