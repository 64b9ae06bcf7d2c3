package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	TypeRent    = "rent"
	TypeUtility = "utility"
	TypeDeposit = "deposit"
	TypeOther   = "other"

	StatusUnpaid = "unpaid"
	StatusPaid   = "paid"
)

type Invoice struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey"`
	TenantID    snowflake.ID    `json:"tenant_id" gorm:"not null;index"`
	InvoiceType string          `json:"invoice_type" gorm:"type:text;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	DueDate     datatypes.Date  `json:"due_date" gorm:"type:date;not null"`
	Status      string          `json:"status" gorm:"type:text;not null;default:unpaid"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceView joins the tenant, unit and property names printed on an invoice.
type InvoiceView struct {
	ID           snowflake.ID
	InvoiceType  string
	Amount       decimal.Decimal
	DueDate      time.Time
	Status       string
	CreatedAt    time.Time
	TenantName   *string
	UnitNumber   *string
	PropertyName *string
}
