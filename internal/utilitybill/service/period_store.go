package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/observability"
	propertydomain "github.com/jkestates/estatedesk/internal/property/domain"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PreviousReadingResolver is the lookup the period store seeds create-mode lines with.
type PreviousReadingResolver interface {
	ResolvePreviousReading(ctx context.Context, unitID snowflake.ID, period billdomain.Period) (decimal.Decimal, error)
}

// PeriodStore decides whether a (property, month) is created or edited and
// builds the lines for it.
type PeriodStore struct {
	db         *gorm.DB
	bills      billdomain.Repository
	properties propertydomain.Repository
	resolver   PreviousReadingResolver
	log        *zap.Logger
	metrics    *observability.Metrics
	timeout    time.Duration
}

func NewPeriodStore(p Params, resolver *Resolver) *PeriodStore {
	return &PeriodStore{
		db:         p.DB,
		bills:      p.Bills,
		properties: p.Properties,
		resolver:   resolver,
		log:        p.Log.Named("utilitybill.periodstore"),
		metrics:    p.Metrics,
		timeout:    p.Config.Billing.RequestTimeout,
	}
}

// LoadOrInit returns edit mode with the stored bills when the month has any,
// otherwise create mode with one draft per unit.
func (s *PeriodStore) LoadOrInit(ctx context.Context, propertyID snowflake.ID, period billdomain.Period, rate decimal.Decimal) (*billdomain.LoadResult, error) {
	if period.IsZero() {
		return nil, billdomain.ErrInvalidPeriod
	}

	property, units, err := s.loadUnits(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	unitIDs := make([]snowflake.ID, 0, len(units))
	for _, u := range units {
		unitIDs = append(unitIDs, u.ID)
	}

	callCtx, cancel := withTimeout(ctx, s.timeout)
	bills, err := s.bills.ListByUnitsAndPeriod(callCtx, s.db, unitIDs, period)
	cancel()
	if err != nil {
		return nil, billdomain.Transient("list utility bills", err)
	}

	var result *billdomain.LoadResult
	if len(bills) > 0 {
		result = s.editLines(property, period, units, bills)
	} else {
		result = s.createLines(ctx, property, period, units, rate)
	}
	s.countLoad(result.Mode)
	return result, nil
}

// InitDrafts always builds create-mode drafts, ignoring stored bills.
func (s *PeriodStore) InitDrafts(ctx context.Context, propertyID snowflake.ID, period billdomain.Period, rate decimal.Decimal) (*billdomain.LoadResult, error) {
	if period.IsZero() {
		return nil, billdomain.ErrInvalidPeriod
	}
	property, units, err := s.loadUnits(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	result := s.createLines(ctx, property, period, units, rate)
	s.countLoad(result.Mode)
	return result, nil
}

func (s *PeriodStore) loadUnits(ctx context.Context, propertyID snowflake.ID) (*propertydomain.Property, []*propertydomain.Unit, error) {
	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	property, err := s.properties.FindProperty(callCtx, s.db, propertyID)
	if err != nil {
		return nil, nil, billdomain.Transient("find property", err)
	}
	if property == nil {
		return nil, nil, propertydomain.ErrPropertyNotFound
	}

	units, err := s.properties.ListUnits(callCtx, s.db, propertyID)
	if err != nil {
		return nil, nil, billdomain.Transient("list units", err)
	}
	return property, units, nil
}

func (s *PeriodStore) editLines(property *propertydomain.Property, period billdomain.Period, units []*propertydomain.Unit, bills []*billdomain.UtilityBill) *billdomain.LoadResult {
	byUnit := make(map[snowflake.ID]*billdomain.UtilityBill, len(bills))
	for _, b := range bills {
		if _, seen := byUnit[b.UnitID]; !seen {
			byUnit[b.UnitID] = b
		}
	}

	result := &billdomain.LoadResult{
		Mode:         billdomain.ModeEdit,
		PropertyName: property.Name,
		Rate:         bills[0].Rate,
		Lines:        make([]billdomain.Line, 0, len(bills)),
	}

	for _, u := range units {
		bill, ok := byUnit[u.ID]
		if !ok {
			continue
		}
		result.Lines = append(result.Lines, billdomain.LineFromBill(*bill, u.UnitNumber, u.TenantName()))
	}

	for _, b := range bills[1:] {
		if !b.Rate.Equal(result.Rate) {
			s.log.Warn("utility bills in one period have different rates",
				zap.String("property_id", property.ID.String()),
				zap.String("billing_month", period.String()),
				zap.String("rate", result.Rate.String()),
				zap.String("divergent_rate", b.Rate.String()),
				zap.String("unit_id", b.UnitID.String()),
			)
			result.Warnings = append(result.Warnings, billdomain.Warning{
				Code:    billdomain.WarningRateDivergence,
				UnitID:  b.UnitID,
				Message: "stored bills use different rates; the first bill's rate " + result.Rate.String() + " is applied",
			})
			break
		}
	}
	return result
}

func (s *PeriodStore) createLines(ctx context.Context, property *propertydomain.Property, period billdomain.Period, units []*propertydomain.Unit, rate decimal.Decimal) *billdomain.LoadResult {
	result := &billdomain.LoadResult{
		Mode:         billdomain.ModeCreate,
		PropertyName: property.Name,
		Rate:         rate,
		Lines:        make([]billdomain.Line, 0, len(units)),
	}

	for _, u := range units {
		line := billdomain.Line{
			UnitID:     u.ID,
			UnitNumber: u.UnitNumber,
			TenantName: u.TenantName(),
			ArrearsBF:  decimal.Zero,
		}

		previous, err := s.resolver.ResolvePreviousReading(ctx, u.ID, period)
		if err != nil {
			s.log.Warn("previous reading unavailable, starting from zero",
				zap.String("property_id", property.ID.String()),
				zap.String("unit_id", u.ID.String()),
				zap.String("billing_month", period.String()),
				zap.Error(err),
			)
			previous = decimal.Zero
			line.Warnings = append(line.Warnings, billdomain.Warning{
				Code:       billdomain.WarningPreviousReadingUnavailable,
				UnitID:     u.ID,
				UnitNumber: u.UnitNumber,
				Message:    "previous reading could not be loaded; 0 was used",
			})
		}
		line.PreviousReading = previous
		line.Recompute(rate)
		result.Lines = append(result.Lines, line)
	}
	return result
}

func (s *PeriodStore) countLoad(mode billdomain.Mode) {
	if s.metrics != nil {
		s.metrics.PeriodLoads.WithLabelValues(string(mode)).Inc()
	}
}
