package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/statement"
)

var ErrInvoiceNotFound = errors.New("invoice_not_found")

type Service interface {
	Document(ctx context.Context, invoiceID snowflake.ID, format statement.Format) (*statement.Document, error)
}
