package session

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/statement"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/shopspring/decimal"
)

// View is a consistent snapshot of a session.
type View struct {
	ID           string                    `json:"id"`
	State        State                     `json:"state"`
	Mode         billdomain.Mode           `json:"mode,omitempty"`
	PropertyID   snowflake.ID              `json:"property_id,omitempty"`
	PropertyName string                    `json:"property_name,omitempty"`
	Period       billdomain.Period         `json:"billing_period"`
	Rate         decimal.Decimal           `json:"rate"`
	Lines        []billdomain.Line         `json:"lines"`
	Warnings     []billdomain.Warning      `json:"warnings,omitempty"`
	TotalUnits   decimal.Decimal           `json:"total_units"`
	TotalAmount  decimal.Decimal           `json:"total_amount"`
	TotalDue     decimal.Decimal           `json:"total_due"`
	Error        string                    `json:"error,omitempty"`
	LastResult   *billdomain.PersistResult `json:"last_result,omitempty"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:           s.id,
		State:        s.state,
		Mode:         s.mode,
		PropertyID:   s.propertyID,
		PropertyName: s.propertyName,
		Period:       s.period,
		Rate:         s.rate,
		Lines:        cloneLines(s.lines),
		Warnings:     append([]billdomain.Warning(nil), s.warnings...),
		LastResult:   s.lastResult,
	}
	v.TotalUnits, v.TotalAmount, v.TotalDue = totals(s.lines)
	if s.lastErr != nil {
		v.Error = s.lastErr.Error()
	}
	return v
}

func totals(lines []billdomain.Line) (units, amount, due decimal.Decimal) {
	units, amount, due = decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range lines {
		units = units.Add(l.UnitsConsumed)
		amount = amount.Add(l.TotalAmount)
		due = due.Add(l.AmountDue())
	}
	return units, amount, due
}

func (s *Session) statementLine(l billdomain.Line) statement.UtilityBillLine {
	return statement.UtilityBillLine{
		UnitNumber:      l.UnitNumber,
		TenantName:      l.TenantName,
		ArrearsBF:       l.ArrearsBF,
		PreviousReading: l.PreviousReading,
		CurrentReading:  l.CurrentReading,
		UnitsConsumed:   l.UnitsConsumed,
		Rate:            s.rate,
		TotalAmount:     l.TotalAmount,
		AmountDue:       l.AmountDue(),
	}
}

// renderable requires s.mu.
func (s *Session) renderable() error {
	if s.state != StateReady && s.state != StateSaved {
		return billdomain.ErrSessionNotReady
	}
	if len(s.lines) == 0 {
		return billdomain.ErrNothingToBill
	}
	return nil
}

// BatchStatement renders every line with the session totals.
func (s *Session) BatchStatement(ctx context.Context, format statement.Format) (*statement.Document, error) {
	s.mu.Lock()
	if err := s.renderable(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	payload := statement.UtilityBillBatch{
		PropertyName: s.propertyName,
		Period:       s.period.Start(),
		Rate:         s.rate,
		Lines:        make([]statement.UtilityBillLine, 0, len(s.lines)),
	}
	for _, l := range s.lines {
		payload.Lines = append(payload.Lines, s.statementLine(l))
	}
	payload.TotalUnits, payload.TotalAmount, _ = totals(s.lines)
	s.mu.Unlock()

	return s.renderer.Render(ctx, statement.Request{
		Kind:    statement.KindUtilityBillBatch,
		Format:  format,
		Payload: payload,
	})
}

// SingleStatement renders one unit's bill.
func (s *Session) SingleStatement(ctx context.Context, unitID snowflake.ID, format statement.Format) (*statement.Document, error) {
	s.mu.Lock()
	if err := s.renderable(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	var (
		line  billdomain.Line
		found bool
	)
	for _, l := range s.lines {
		if l.UnitID == unitID {
			line, found = l.Clone(), true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return nil, billdomain.ErrUnitNotInSession
	}
	payload := statement.UtilityBillSingle{
		PropertyName: s.propertyName,
		Period:       s.period.Start(),
		Line:         s.statementLine(line),
	}
	s.mu.Unlock()

	return s.renderer.Render(ctx, statement.Request{
		Kind:    statement.KindUtilityBillSingle,
		Format:  format,
		Payload: payload,
	})
}
