package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/payment/domain"
	"github.com/jkestates/estatedesk/internal/payment/repository"
	"github.com/jkestates/estatedesk/internal/statement"
	"github.com/jkestates/estatedesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *testutil.Seeder, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Repo:     repository.Provide(),
		Renderer: testutil.NewRenderer(),
	})
	return svc, testutil.NewSeeder(t, db), db
}

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestReceipt(t *testing.T) {
	svc, seed, _ := newTestService(t)
	property := seed.Property("Greenview Court")
	unit := seed.Unit(property.ID, "A1")
	tenant := seed.Tenant(unit.ID, "Mary Wanjiku")
	payment := seed.Payment(tenant.ID, nil, 25000, day(3), domain.StatusCompleted)

	doc, err := svc.Receipt(context.Background(), payment.ID, statement.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "receipt_"+statement.ReceiptNumber(payment.ID.String())+".pdf", doc.Filename)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))

	doc, err = svc.Receipt(context.Background(), payment.ID, statement.FormatCSV)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(doc.Data)).ReadAll()
	require.NoError(t, err)
	fields := map[string]string{}
	for _, r := range records[1:] {
		fields[r[0]] = r[1]
	}
	assert.Equal(t, "Mary Wanjiku", fields["Tenant"])
	assert.Equal(t, "Greenview Court", fields["Property"])
	assert.Equal(t, "KES 25,000.00", fields["Amount"])
	assert.Equal(t, "03/03/2025", fields["Payment Date"])
	assert.Equal(t, statement.NotAvailable, fields["Notes"])
}

func TestReceiptWithMissingTenantUsesPlaceholder(t *testing.T) {
	svc, seed, db := newTestService(t)
	property := seed.Property("Greenview Court")
	unit := seed.Unit(property.ID, "A1")
	tenant := seed.Tenant(unit.ID, "Mary Wanjiku")
	payment := seed.Payment(tenant.ID, nil, 100, day(3), domain.StatusCompleted)

	// tenant removed after the payment was recorded
	require.NoError(t, db.Exec("DELETE FROM tenants WHERE id = ?", tenant.ID).Error)

	doc, err := svc.Receipt(context.Background(), payment.ID, statement.FormatCSV)
	require.NoError(t, err)
	assert.Contains(t, string(doc.Data), statement.UnknownTenant)
	assert.Contains(t, string(doc.Data), statement.UnknownProperty)
}

func TestReceiptNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Receipt(context.Background(), snowflake.ID(42), statement.FormatPDF)
	require.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestTenantStatement(t *testing.T) {
	svc, seed, _ := newTestService(t)
	property := seed.Property("Greenview Court")
	unit := seed.Unit(property.ID, "B2")
	tenant := seed.Tenant(unit.ID, "John Otieno")
	propertyID := property.ID
	seed.Payment(tenant.ID, &propertyID, 10000, day(1), domain.StatusCompleted)
	seed.Payment(tenant.ID, &propertyID, 5000, day(15), domain.StatusPending)
	seed.Payment(tenant.ID, &propertyID, 2500, day(20), domain.StatusCompleted)
	seed.Payment(tenant.ID, &propertyID, 800, day(22), domain.StatusFailed)

	doc, err := svc.TenantStatement(context.Background(), tenant.ID, statement.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "tenant-statement-john-otieno.csv", doc.Filename)

	records, err := csv.NewReader(bytes.NewReader(doc.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 7)
	// newest first
	assert.Equal(t, "22/03/2025", records[1][1])
	assert.Equal(t, "failed", records[1][4])
	assert.Equal(t, "01/03/2025", records[4][1])
	// completed only: the pending and failed payments are not money received
	assert.Equal(t, "12,500.00", records[5][2])
	assert.Equal(t, []string{"Pending Confirmation", "KES 5,000.00"}, records[6][:2])
}

func TestTenantStatementUnknownTenant(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.TenantStatement(context.Background(), snowflake.ID(7), statement.FormatPDF)
	require.ErrorIs(t, err, domain.ErrTenantNotFound)
}
