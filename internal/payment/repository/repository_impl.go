package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/jkestates/estatedesk/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() paymentdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *paymentdomain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (
			id, tenant_id, property_id, amount, payment_date, method, status, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.TenantID,
		payment.PropertyID,
		payment.Amount,
		payment.PaymentDate,
		payment.Method,
		payment.Status,
		payment.Notes,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Error
}

// FindView resolves the property through the tenant's unit when the payment
// row does not carry one.
func (r *repo) FindView(ctx context.Context, db *gorm.DB, id snowflake.ID) (*paymentdomain.PaymentView, error) {
	var view paymentdomain.PaymentView
	err := db.WithContext(ctx).Raw(
		`SELECT p.id, p.tenant_id, p.amount, p.payment_date, p.method, p.status, p.notes,
			t.name AS tenant_name,
			COALESCE(pp.name, up.name) AS property_name
		 FROM payments p
		 LEFT JOIN tenants t ON t.id = p.tenant_id
		 LEFT JOIN properties pp ON pp.id = p.property_id
		 LEFT JOIN units u ON u.id = t.unit_id
		 LEFT JOIN properties up ON up.id = u.property_id
		 WHERE p.id = ?`,
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

func (r *repo) ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*paymentdomain.Payment, error) {
	var payments []*paymentdomain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, property_id, amount, payment_date, method, status, notes, created_at, updated_at
		 FROM payments
		 WHERE tenant_id = ?
		 ORDER BY payment_date DESC, id DESC`,
		tenantID,
	).Scan(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) FindTenantHeader(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*paymentdomain.TenantHeader, error) {
	var header paymentdomain.TenantHeader
	err := db.WithContext(ctx).Raw(
		`SELECT t.id AS tenant_id, t.name AS tenant_name,
			u.unit_number, pr.name AS property_name
		 FROM tenants t
		 LEFT JOIN units u ON u.id = t.unit_id
		 LEFT JOIN properties pr ON pr.id = u.property_id
		 WHERE t.id = ?`,
		tenantID,
	).Scan(&header).Error
	if err != nil {
		return nil, err
	}
	if header.TenantID == 0 {
		return nil, nil
	}
	return &header, nil
}
