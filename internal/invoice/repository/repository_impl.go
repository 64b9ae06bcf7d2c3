package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/jkestates/estatedesk/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() invoicedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *invoicedomain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (
			id, tenant_id, invoice_type, amount, due_date, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.TenantID,
		invoice.InvoiceType,
		invoice.Amount,
		invoice.DueDate,
		invoice.Status,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) FindView(ctx context.Context, db *gorm.DB, id snowflake.ID) (*invoicedomain.InvoiceView, error) {
	var view invoicedomain.InvoiceView
	err := db.WithContext(ctx).Raw(
		`SELECT i.id, i.invoice_type, i.amount, i.due_date, i.status, i.created_at,
			t.name AS tenant_name,
			u.unit_number,
			pr.name AS property_name
		 FROM invoices i
		 LEFT JOIN tenants t ON t.id = i.tenant_id
		 LEFT JOIN units u ON u.id = t.unit_id
		 LEFT JOIN properties pr ON pr.id = u.property_id
		 WHERE i.id = ?`,
		id,
	).Scan(&view).Error
	if err != nil {
		return nil, err
	}
	if view.ID == 0 {
		return nil, nil
	}
	return &view, nil
}
