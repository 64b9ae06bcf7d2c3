package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindView(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PaymentView, error)
	// ListByTenant returns the tenant's payments, newest first.
	ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*Payment, error)
	FindTenantHeader(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*TenantHeader, error)
}
