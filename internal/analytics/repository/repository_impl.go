package repository

import (
	"context"

	analyticsdomain "github.com/jkestates/estatedesk/internal/analytics/domain"
	invoicedomain "github.com/jkestates/estatedesk/internal/invoice/domain"
	paymentdomain "github.com/jkestates/estatedesk/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() analyticsdomain.Repository {
	return &repo{}
}

// Financials groups payments by the property they belong to. Payments
// without a property column fall back to the tenant's unit.
func (r *repo) Financials(ctx context.Context, db *gorm.DB, filter analyticsdomain.Filter) ([]analyticsdomain.PropertyFinancials, error) {
	stmt := db.WithContext(ctx).
		Table("payments AS p").
		Select(
			`pr.id AS property_id, pr.name AS property_name,
			COUNT(p.id) AS payment_count,
			COALESCE(SUM(CASE WHEN p.status = ? THEN p.amount ELSE 0 END), 0) AS collected,
			COALESCE(SUM(CASE WHEN p.status = ? THEN p.amount ELSE 0 END), 0) AS pending`,
			paymentdomain.StatusCompleted,
			paymentdomain.StatusPending,
		).
		Joins("LEFT JOIN tenants t ON t.id = p.tenant_id").
		Joins("LEFT JOIN units u ON u.id = t.unit_id").
		Joins("LEFT JOIN properties pr ON pr.id = COALESCE(p.property_id, u.property_id)")

	if filter.HasProperty() {
		stmt = stmt.Where("COALESCE(p.property_id, u.property_id) = ?", filter.PropertyID)
	}
	if !filter.Start.IsZero() {
		stmt = stmt.Where("p.payment_date >= ?", filter.Start)
	}
	if !filter.End.IsZero() {
		stmt = stmt.Where("p.payment_date <= ?", filter.End)
	}

	var rows []analyticsdomain.PropertyFinancials
	err := stmt.Group("pr.id, pr.name").Order("pr.name").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) OutstandingInvoices(ctx context.Context, db *gorm.DB, filter analyticsdomain.Filter) (analyticsdomain.OutstandingInvoices, error) {
	stmt := db.WithContext(ctx).
		Table("invoices AS i").
		Select("COUNT(i.id) AS invoice_count, COALESCE(SUM(i.amount), 0) AS amount").
		Joins("LEFT JOIN tenants t ON t.id = i.tenant_id").
		Joins("LEFT JOIN units u ON u.id = t.unit_id").
		Where("i.status = ?", invoicedomain.StatusUnpaid)

	if filter.HasProperty() {
		stmt = stmt.Where("u.property_id = ?", filter.PropertyID)
	}
	if !filter.Start.IsZero() {
		stmt = stmt.Where("i.due_date >= ?", filter.Start)
	}
	if !filter.End.IsZero() {
		stmt = stmt.Where("i.due_date <= ?", filter.End)
	}

	var out analyticsdomain.OutstandingInvoices
	if err := stmt.Scan(&out).Error; err != nil {
		return analyticsdomain.OutstandingInvoices{}, err
	}
	return out, nil
}

// Occupancy counts a unit as occupied while it has at least one active tenant.
func (r *repo) Occupancy(ctx context.Context, db *gorm.DB, filter analyticsdomain.Filter) ([]analyticsdomain.PropertyOccupancy, error) {
	stmt := db.WithContext(ctx).
		Table("properties AS pr").
		Select(
			`pr.id AS property_id, pr.name AS property_name,
			COUNT(DISTINCT u.id) AS units,
			COUNT(DISTINCT t.unit_id) AS occupied`,
		).
		Joins("LEFT JOIN units u ON u.property_id = pr.id").
		Joins("LEFT JOIN tenants t ON t.unit_id = u.id AND t.is_active = ?", true)

	if filter.HasProperty() {
		stmt = stmt.Where("pr.id = ?", filter.PropertyID)
	}

	var rows []analyticsdomain.PropertyOccupancy
	err := stmt.Group("pr.id, pr.name").Order("pr.name").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) UtilityByMonth(ctx context.Context, db *gorm.DB, filter analyticsdomain.Filter) ([]analyticsdomain.UtilityMonth, error) {
	stmt := db.WithContext(ctx).
		Table("utility_bills AS ub").
		Select(
			`pr.id AS property_id, pr.name AS property_name, ub.billing_month,
			COUNT(ub.id) AS bills,
			COALESCE(SUM(ub.units_consumed), 0) AS units_consumed,
			COALESCE(SUM(ub.total_amount), 0) AS total_amount`,
		).
		Joins("JOIN units u ON u.id = ub.unit_id").
		Joins("JOIN properties pr ON pr.id = u.property_id")

	if filter.HasProperty() {
		stmt = stmt.Where("u.property_id = ?", filter.PropertyID)
	}
	if !filter.Start.IsZero() {
		stmt = stmt.Where("ub.billing_month >= ?", filter.Start)
	}
	if !filter.End.IsZero() {
		stmt = stmt.Where("ub.billing_month <= ?", filter.End)
	}

	var rows []analyticsdomain.UtilityMonth
	err := stmt.Group("pr.id, pr.name, ub.billing_month").
		Order("ub.billing_month DESC, pr.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Tenants(ctx context.Context, db *gorm.DB, filter analyticsdomain.Filter) ([]analyticsdomain.TenantRow, error) {
	stmt := db.WithContext(ctx).
		Table("tenants AS t").
		Select(
			`t.id AS tenant_id, t.name, t.phone, t.email, t.is_active,
			u.unit_number, pr.name AS property_name`,
		).
		Joins("LEFT JOIN units u ON u.id = t.unit_id").
		Joins("LEFT JOIN properties pr ON pr.id = u.property_id")

	if filter.HasProperty() {
		stmt = stmt.Where("u.property_id = ?", filter.PropertyID)
	}

	var rows []analyticsdomain.TenantRow
	if err := stmt.Order("t.name, t.id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
