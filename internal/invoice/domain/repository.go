package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindView(ctx context.Context, db *gorm.DB, id snowflake.ID) (*InvoiceView, error)
}
