package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrPropertyNotFound = errors.New("property_not_found")
	ErrTenantNotFound   = errors.New("tenant_not_found")
)

type Service interface {
	ListProperties(ctx context.Context) ([]*Property, error)
	GetProperty(ctx context.Context, id snowflake.ID) (*Property, error)
	ListUnits(ctx context.Context, propertyID snowflake.ID) ([]UnitView, error)
	GetTenant(ctx context.Context, id snowflake.ID) (*Tenant, error)
}
