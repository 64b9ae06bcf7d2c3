package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/statement"
)

var (
	ErrPaymentNotFound = errors.New("payment_not_found")
	ErrTenantNotFound  = errors.New("tenant_not_found")
)

type Service interface {
	Receipt(ctx context.Context, paymentID snowflake.ID, format statement.Format) (*statement.Document, error)
	TenantStatement(ctx context.Context, tenantID snowflake.ID, format statement.Format) (*statement.Document, error)
}
