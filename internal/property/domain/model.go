package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const VacantLabel = "Vacant"

type Property struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Address   string       `json:"address" gorm:"type:text"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (Property) TableName() string { return "properties" }

type Unit struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	PropertyID snowflake.ID `json:"property_id" gorm:"not null;index"`
	UnitNumber string       `json:"unit_number" gorm:"type:text;not null"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"not null"`

	Tenants []Tenant `json:"-" gorm:"foreignKey:UnitID"`
}

func (Unit) TableName() string { return "units" }

// CurrentTenant returns the first active tenant. Repositories preload active
// tenants ordered by name, so the choice is stable.
func (u Unit) CurrentTenant() *Tenant {
	for i := range u.Tenants {
		if u.Tenants[i].IsActive {
			return &u.Tenants[i]
		}
	}
	return nil
}

// IsOccupied is derived from the tenant relationship; there is no stored status.
func (u Unit) IsOccupied() bool {
	return u.CurrentTenant() != nil
}

func (u Unit) TenantName() string {
	if t := u.CurrentTenant(); t != nil && t.Name != "" {
		return t.Name
	}
	return VacantLabel
}

type Tenant struct {
	ID        snowflake.ID  `json:"id" gorm:"primaryKey"`
	UnitID    *snowflake.ID `json:"unit_id,omitempty" gorm:"index"`
	Name      string        `json:"name" gorm:"type:text;not null"`
	Email     string        `json:"email,omitempty" gorm:"type:text"`
	Phone     string        `json:"phone,omitempty" gorm:"type:text"`
	IsActive  bool          `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time     `json:"updated_at" gorm:"not null"`
}

func (Tenant) TableName() string { return "tenants" }

// UnitView is a unit joined with its display fields.
type UnitView struct {
	ID         snowflake.ID  `json:"id"`
	PropertyID snowflake.ID  `json:"property_id"`
	UnitNumber string        `json:"unit_number"`
	TenantID   *snowflake.ID `json:"tenant_id,omitempty"`
	TenantName string        `json:"tenant_name"`
	IsOccupied bool          `json:"is_occupied"`
}

func NewUnitView(u Unit) UnitView {
	view := UnitView{
		ID:         u.ID,
		PropertyID: u.PropertyID,
		UnitNumber: u.UnitNumber,
		TenantName: u.TenantName(),
		IsOccupied: u.IsOccupied(),
	}
	if t := u.CurrentTenant(); t != nil {
		id := t.ID
		view.TenantID = &id
	}
	return view
}
