package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Financials(ctx context.Context, db *gorm.DB, filter Filter) ([]PropertyFinancials, error)
	OutstandingInvoices(ctx context.Context, db *gorm.DB, filter Filter) (OutstandingInvoices, error)
	Occupancy(ctx context.Context, db *gorm.DB, filter Filter) ([]PropertyOccupancy, error)
	UtilityByMonth(ctx context.Context, db *gorm.DB, filter Filter) ([]UtilityMonth, error)
	Tenants(ctx context.Context, db *gorm.DB, filter Filter) ([]TenantRow, error)
}
