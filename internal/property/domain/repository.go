package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListProperties(ctx context.Context, db *gorm.DB) ([]*Property, error)
	FindProperty(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Property, error)
	ListUnits(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]*Unit, error)
	FindTenant(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
}
