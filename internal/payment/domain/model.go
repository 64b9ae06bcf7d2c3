package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	MethodCash         = "cash"
	MethodMobileMoney  = "mpesa"
	MethodBankTransfer = "bank_transfer"
	MethodCheque       = "cheque"

	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
)

type Payment struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey"`
	TenantID    snowflake.ID    `json:"tenant_id" gorm:"not null;index:idx_payments_tenant_date,priority:1"`
	PropertyID  *snowflake.ID   `json:"property_id,omitempty" gorm:"index:idx_payments_property_date,priority:1"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	PaymentDate datatypes.Date  `json:"payment_date" gorm:"type:date;not null;index:idx_payments_tenant_date,priority:2;index:idx_payments_property_date,priority:2"`
	Method      string          `json:"method" gorm:"type:text;not null"`
	Status      string          `json:"status" gorm:"type:text;not null"`
	Notes       string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

// PaymentView is a payment joined with the names printed on a receipt.
// Joined columns are nil when the related row is gone.
type PaymentView struct {
	ID           snowflake.ID
	TenantID     snowflake.ID
	Amount       decimal.Decimal
	PaymentDate  time.Time
	Method       string
	Status       string
	Notes        *string
	TenantName   *string
	PropertyName *string
}

// TenantHeader carries the names printed above a tenant statement.
type TenantHeader struct {
	TenantID     snowflake.ID
	TenantName   string
	UnitNumber   *string
	PropertyName *string
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
