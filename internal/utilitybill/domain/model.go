package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// UtilityBill is one metered charge per unit and billing month.
// (unit_id, billing_month) is unique.
type UtilityBill struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	UnitID          snowflake.ID    `json:"unit_id" gorm:"not null;uniqueIndex:ux_utility_bills_unit_month"`
	BillingMonth    datatypes.Date  `json:"billing_month" gorm:"type:date;not null;uniqueIndex:ux_utility_bills_unit_month"`
	ArrearsBF       decimal.Decimal `json:"arrears_bf" gorm:"column:arrears_bf;type:numeric(14,2);not null;default:0"`
	PreviousReading decimal.Decimal `json:"previous_reading" gorm:"type:numeric(14,2);not null"`
	CurrentReading  decimal.Decimal `json:"current_reading" gorm:"type:numeric(14,2);not null"`
	UnitsConsumed   decimal.Decimal `json:"units_consumed" gorm:"type:numeric(14,2);not null"`
	Rate            decimal.Decimal `json:"rate" gorm:"type:numeric(14,4);not null"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:numeric(14,2);not null"`
	Version         int64           `json:"version" gorm:"not null;default:1"`
	RecordedBy      string          `json:"recorded_by,omitempty" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"not null"`
}

func (UtilityBill) TableName() string { return "utility_bills" }

func (b UtilityBill) Period() Period {
	return NewPeriod(time.Time(b.BillingMonth))
}
