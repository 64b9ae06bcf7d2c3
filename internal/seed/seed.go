package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/jkestates/estatedesk/internal/invoice/domain"
	paymentdomain "github.com/jkestates/estatedesk/internal/payment/domain"
	propertydomain "github.com/jkestates/estatedesk/internal/property/domain"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPropertyName    = "Greenview Court"
	defaultPropertyAddress = "Ngong Road, Nairobi"
	demoRecorder           = "seed"
)

// DemoOptions controls the demo estate. Zero values fall back to defaults.
type DemoOptions struct {
	PropertyName string
	// Period is the month that receives the opening utility bills, so the
	// following month opens in create mode with readings carried forward.
	Period billdomain.Period
	Now    time.Time
}

type demoUnit struct {
	number   string
	tenant   string
	previous int64
	current  int64
	rent     int64
}

var demoUnits = []demoUnit{
	{number: "A1", tenant: "Mary Wanjiku", previous: 0, current: 30, rent: 18000},
	{number: "A2", tenant: "John Otieno", previous: 50, current: 80, rent: 18000},
	{number: "B1", tenant: "Grace Achieng", previous: 120, current: 164, rent: 22000},
	{number: "B2"},
}

var demoRate = decimal.NewFromInt(15)

// EnsureDemoEstate seeds one property with units, tenants, opening bills, a
// rent invoice and a payment per tenant. Rows that already exist are kept.
func EnsureDemoEstate(ctx context.Context, db *gorm.DB, node *snowflake.Node, opts DemoOptions) (propertydomain.Property, error) {
	if db == nil {
		return propertydomain.Property{}, errors.New("seed database handle is required")
	}
	if node == nil {
		return propertydomain.Property{}, errors.New("seed snowflake node is required")
	}
	opts = withDefaults(opts)

	var property propertydomain.Property
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		property, err = ensurePropertyTx(ctx, tx, node, opts)
		if err != nil {
			return err
		}
		for _, du := range demoUnits {
			unit, err := ensureUnitTx(ctx, tx, node, property.ID, du.number, opts.Now)
			if err != nil {
				return err
			}
			if du.tenant == "" {
				continue
			}
			tenant, err := ensureTenantTx(ctx, tx, node, unit.ID, du.tenant, opts.Now)
			if err != nil {
				return err
			}
			if err := ensureBillTx(ctx, tx, node, unit.ID, du, opts); err != nil {
				return err
			}
			if err := ensureLedgerTx(ctx, tx, node, property.ID, tenant.ID, du.rent, opts); err != nil {
				return err
			}
		}
		return nil
	})
	return property, err
}

func withDefaults(opts DemoOptions) DemoOptions {
	if strings.TrimSpace(opts.PropertyName) == "" {
		opts.PropertyName = defaultPropertyName
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.Period.IsZero() {
		opts.Period = billdomain.NewPeriod(opts.Now).Prev()
	}
	return opts
}

func ensurePropertyTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, opts DemoOptions) (propertydomain.Property, error) {
	var property propertydomain.Property
	err := tx.WithContext(ctx).Where("name = ?", opts.PropertyName).First(&property).Error
	if err == nil {
		return property, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return property, err
	}

	property = propertydomain.Property{
		ID:        node.Generate(),
		Name:      opts.PropertyName,
		Address:   defaultPropertyAddress,
		CreatedAt: opts.Now,
		UpdatedAt: opts.Now,
	}
	return property, tx.WithContext(ctx).Create(&property).Error
}

func ensureUnitTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, propertyID snowflake.ID, number string, now time.Time) (propertydomain.Unit, error) {
	var unit propertydomain.Unit
	err := tx.WithContext(ctx).Where("property_id = ? AND unit_number = ?", propertyID, number).First(&unit).Error
	if err == nil {
		return unit, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return unit, err
	}

	unit = propertydomain.Unit{ID: node.Generate(), PropertyID: propertyID, UnitNumber: number, CreatedAt: now, UpdatedAt: now}
	return unit, tx.WithContext(ctx).Create(&unit).Error
}

func ensureTenantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, unitID snowflake.ID, name string, now time.Time) (propertydomain.Tenant, error) {
	var tenant propertydomain.Tenant
	err := tx.WithContext(ctx).Where("unit_id = ? AND name = ?", unitID, name).First(&tenant).Error
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return tenant, err
	}

	id := unitID
	tenant = propertydomain.Tenant{
		ID:        node.Generate(),
		UnitID:    &id,
		Name:      name,
		Email:     strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Phone:     "+254700000000",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tenant, tx.WithContext(ctx).Create(&tenant).Error
}

func ensureBillTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, unitID snowflake.ID, du demoUnit, opts DemoOptions) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&billdomain.UtilityBill{}).
		Where("unit_id = ? AND billing_month = ?", unitID, opts.Period.Date()).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	previous := decimal.NewFromInt(du.previous)
	current := decimal.NewFromInt(du.current)
	computed := billdomain.Compute(previous, &current, demoRate)
	bill := billdomain.UtilityBill{
		ID:              node.Generate(),
		UnitID:          unitID,
		BillingMonth:    opts.Period.Date(),
		ArrearsBF:       decimal.Zero,
		PreviousReading: previous,
		CurrentReading:  current,
		UnitsConsumed:   computed.UnitsConsumed,
		Rate:            demoRate,
		TotalAmount:     computed.TotalAmount,
		Version:         1,
		RecordedBy:      demoRecorder,
		CreatedAt:       opts.Now,
		UpdatedAt:       opts.Now,
	}
	return tx.WithContext(ctx).Create(&bill).Error
}

// ensureLedgerTx adds the month's rent invoice and a completed payment for it.
func ensureLedgerTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, propertyID, tenantID snowflake.ID, rent int64, opts DemoOptions) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&invoicedomain.Invoice{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	amount := decimal.NewFromInt(rent)
	due := opts.Period.Start().AddDate(0, 0, 4)
	invoice := invoicedomain.Invoice{
		ID:          node.Generate(),
		TenantID:    tenantID,
		InvoiceType: invoicedomain.TypeRent,
		Amount:      amount,
		DueDate:     datatypes.Date(due),
		Status:      invoicedomain.StatusPaid,
		CreatedAt:   opts.Now,
		UpdatedAt:   opts.Now,
	}
	if err := tx.WithContext(ctx).Create(&invoice).Error; err != nil {
		return err
	}

	pid := propertyID
	payment := paymentdomain.Payment{
		ID:          node.Generate(),
		TenantID:    tenantID,
		PropertyID:  &pid,
		Amount:      amount,
		PaymentDate: datatypes.Date(due.AddDate(0, 0, -2)),
		Method:      paymentdomain.MethodMobileMoney,
		Status:      paymentdomain.StatusCompleted,
		CreatedAt:   opts.Now,
		UpdatedAt:   opts.Now,
	}
	return tx.WithContext(ctx).Create(&payment).Error
}
