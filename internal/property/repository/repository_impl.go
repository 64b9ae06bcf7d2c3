package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	propertydomain "github.com/jkestates/estatedesk/internal/property/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() propertydomain.Repository {
	return &repo{}
}

func (r *repo) ListProperties(ctx context.Context, db *gorm.DB) ([]*propertydomain.Property, error) {
	var properties []*propertydomain.Property
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, address, created_at, updated_at
		 FROM properties
		 ORDER BY name ASC`,
	).Scan(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *repo) FindProperty(ctx context.Context, db *gorm.DB, id snowflake.ID) (*propertydomain.Property, error) {
	var property propertydomain.Property
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, address, created_at, updated_at
		 FROM properties WHERE id = ?`,
		id,
	).Scan(&property).Error
	if err != nil {
		return nil, err
	}
	if property.ID == 0 {
		return nil, nil
	}
	return &property, nil
}

// ListUnits returns the property's units with active tenants preloaded.
func (r *repo) ListUnits(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]*propertydomain.Unit, error) {
	var units []*propertydomain.Unit
	err := db.WithContext(ctx).
		Model(&propertydomain.Unit{}).
		Where("property_id = ?", propertyID).
		Preload("Tenants", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("is_active = ?", true).Order("name ASC")
		}).
		Order("unit_number ASC").
		Find(&units).Error
	if err != nil {
		return nil, err
	}
	return units, nil
}

func (r *repo) FindTenant(ctx context.Context, db *gorm.DB, id snowflake.ID) (*propertydomain.Tenant, error) {
	var tenant propertydomain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, unit_id, name, email, phone, is_active, created_at, updated_at
		 FROM tenants WHERE id = ?`,
		id,
	).Scan(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}
