package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/clock"
	"github.com/jkestates/estatedesk/internal/config"
	"github.com/jkestates/estatedesk/internal/observability"
	propertyrepo "github.com/jkestates/estatedesk/internal/property/repository"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/jkestates/estatedesk/internal/utilitybill/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var savedAt = time.Date(2025, time.March, 31, 17, 0, 0, 0, time.UTC)

func newParams(t *testing.T, db *gorm.DB) Params {
	t.Helper()
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	return Params{
		DB:  db,
		Log: zap.NewNop(),
		Config: config.Config{Billing: config.BillingConfig{
			RequestTimeout:    5 * time.Second,
			Consistency:       config.ConsistencyPerLine,
			MaxParallelWrites: 4,
			SaveLockTTL:       time.Minute,
		}},
		Clock:      clock.Fixed(savedAt),
		Node:       node,
		Bills:      repository.Provide(),
		Properties: propertyrepo.Provide(),
		Metrics:    observability.NopMetrics(),
	}
}

func period(t *testing.T, value string) billdomain.Period {
	t.Helper()
	p, err := billdomain.ParsePeriod(value)
	require.NoError(t, err)
	return p
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func dp(v int64) *decimal.Decimal {
	x := decimal.NewFromInt(v)
	return &x
}

type billsMock struct {
	mock.Mock
}

func (m *billsMock) ListByUnitsAndPeriod(ctx context.Context, db *gorm.DB, unitIDs []snowflake.ID, p billdomain.Period) ([]*billdomain.UtilityBill, error) {
	args := m.Called(ctx, db, unitIDs, p)
	bills, _ := args.Get(0).([]*billdomain.UtilityBill)
	return bills, args.Error(1)
}

func (m *billsMock) LatestBefore(ctx context.Context, db *gorm.DB, unitID snowflake.ID, p billdomain.Period) (*billdomain.UtilityBill, error) {
	args := m.Called(ctx, db, unitID, p)
	bill, _ := args.Get(0).(*billdomain.UtilityBill)
	return bill, args.Error(1)
}

func (m *billsMock) Insert(ctx context.Context, db *gorm.DB, bill *billdomain.UtilityBill) error {
	args := m.Called(ctx, db, bill)
	return args.Error(0)
}

func (m *billsMock) Update(ctx context.Context, db *gorm.DB, bill *billdomain.UtilityBill) error {
	args := m.Called(ctx, db, bill)
	return args.Error(0)
}
