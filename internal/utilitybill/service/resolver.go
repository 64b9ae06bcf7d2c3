package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resolver finds the reading a new bill starts from.
type Resolver struct {
	db      *gorm.DB
	bills   billdomain.Repository
	log     *zap.Logger
	timeout time.Duration
}

func NewResolver(p Params) *Resolver {
	return &Resolver{
		db:      p.DB,
		bills:   p.Bills,
		log:     p.Log.Named("utilitybill.resolver"),
		timeout: p.Config.Billing.RequestTimeout,
	}
}

// ResolvePreviousReading returns the current reading of the unit's latest bill
// strictly before period, or zero when the unit has never been billed.
func (r *Resolver) ResolvePreviousReading(ctx context.Context, unitID snowflake.ID, period billdomain.Period) (decimal.Decimal, error) {
	if period.IsZero() {
		return decimal.Zero, billdomain.ErrInvalidPeriod
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	bill, err := r.bills.LatestBefore(ctx, r.db, unitID, period)
	if err != nil {
		return decimal.Zero, billdomain.Transient("resolve previous reading", err)
	}
	if bill == nil {
		return decimal.Zero, nil
	}
	return bill.CurrentReading, nil
}
