package testutil

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/jkestates/estatedesk/internal/invoice/domain"
	paymentdomain "github.com/jkestates/estatedesk/internal/payment/domain"
	propertydomain "github.com/jkestates/estatedesk/internal/property/domain"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seeder inserts fixture rows with ids from a shared snowflake node.
type Seeder struct {
	t    *testing.T
	db   *gorm.DB
	Node *snowflake.Node
	Now  time.Time
}

func NewSeeder(t *testing.T, db *gorm.DB) *Seeder {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return &Seeder{t: t, db: db, Node: node, Now: time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC)}
}

func (s *Seeder) Property(name string) propertydomain.Property {
	s.t.Helper()
	p := propertydomain.Property{ID: s.Node.Generate(), Name: name, Address: "Nairobi", CreatedAt: s.Now, UpdatedAt: s.Now}
	require.NoError(s.t, s.db.Create(&p).Error)
	return p
}

func (s *Seeder) Unit(propertyID snowflake.ID, number string) propertydomain.Unit {
	s.t.Helper()
	u := propertydomain.Unit{ID: s.Node.Generate(), PropertyID: propertyID, UnitNumber: number, CreatedAt: s.Now, UpdatedAt: s.Now}
	require.NoError(s.t, s.db.Create(&u).Error)
	return u
}

func (s *Seeder) Tenant(unitID snowflake.ID, name string) propertydomain.Tenant {
	s.t.Helper()
	id := unitID
	tenant := propertydomain.Tenant{
		ID:        s.Node.Generate(),
		UnitID:    &id,
		Name:      name,
		Email:     "tenant@example.com",
		Phone:     "+254700000000",
		IsActive:  true,
		CreatedAt: s.Now,
		UpdatedAt: s.Now,
	}
	require.NoError(s.t, s.db.Create(&tenant).Error)
	return tenant
}

// Bill stores a computed bill for the unit and month.
func (s *Seeder) Bill(unitID snowflake.ID, period string, previous, current, rate int64) billdomain.UtilityBill {
	s.t.Helper()
	p, err := billdomain.ParsePeriod(period)
	require.NoError(s.t, err)

	prev := decimal.NewFromInt(previous)
	curr := decimal.NewFromInt(current)
	r := decimal.NewFromInt(rate)
	c := billdomain.Compute(prev, &curr, r)

	bill := billdomain.UtilityBill{
		ID:              s.Node.Generate(),
		UnitID:          unitID,
		BillingMonth:    p.Date(),
		ArrearsBF:       decimal.Zero,
		PreviousReading: prev,
		CurrentReading:  curr,
		UnitsConsumed:   c.UnitsConsumed,
		Rate:            r,
		TotalAmount:     c.TotalAmount,
		Version:         1,
		CreatedAt:       s.Now,
		UpdatedAt:       s.Now,
	}
	require.NoError(s.t, s.db.Create(&bill).Error)
	return bill
}

func (s *Seeder) Payment(tenantID snowflake.ID, propertyID *snowflake.ID, amount int64, date time.Time, status string) paymentdomain.Payment {
	s.t.Helper()
	payment := paymentdomain.Payment{
		ID:          s.Node.Generate(),
		TenantID:    tenantID,
		PropertyID:  propertyID,
		Amount:      decimal.NewFromInt(amount),
		PaymentDate: datatypes.Date(date),
		Method:      paymentdomain.MethodMobileMoney,
		Status:      status,
		CreatedAt:   s.Now,
		UpdatedAt:   s.Now,
	}
	require.NoError(s.t, s.db.Create(&payment).Error)
	return payment
}

func (s *Seeder) Invoice(tenantID snowflake.ID, invoiceType string, amount int64, due time.Time, status string) invoicedomain.Invoice {
	s.t.Helper()
	invoice := invoicedomain.Invoice{
		ID:          s.Node.Generate(),
		TenantID:    tenantID,
		InvoiceType: invoiceType,
		Amount:      decimal.NewFromInt(amount),
		DueDate:     datatypes.Date(due),
		Status:      status,
		CreatedAt:   s.Now,
		UpdatedAt:   s.Now,
	}
	require.NoError(s.t, s.db.Create(&invoice).Error)
	return invoice
}
