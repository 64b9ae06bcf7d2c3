package service

import (
	"context"
	"testing"

	"github.com/jkestates/estatedesk/internal/property/domain"
	"github.com/jkestates/estatedesk/internal/property/repository"
	"github.com/jkestates/estatedesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *testutil.Seeder) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	svc := New(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})
	return svc, testutil.NewSeeder(t, db)
}

func TestListPropertiesByName(t *testing.T) {
	svc, seed := newTestService(t)
	seed.Property("Hillside Flats")
	seed.Property("Greenview Court")

	properties, err := svc.ListProperties(context.Background())
	require.NoError(t, err)
	require.Len(t, properties, 2)
	assert.Equal(t, "Greenview Court", properties[0].Name)
	assert.Equal(t, "Hillside Flats", properties[1].Name)
}

func TestListUnitsShowsOccupancy(t *testing.T) {
	svc, seed := newTestService(t)
	property := seed.Property("Greenview Court")
	a1 := seed.Unit(property.ID, "A1")
	seed.Unit(property.ID, "A2")
	mary := seed.Tenant(a1.ID, "Mary Wanjiku")

	units, err := svc.ListUnits(context.Background(), property.ID)
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "A1", units[0].UnitNumber)
	assert.True(t, units[0].IsOccupied)
	assert.Equal(t, "Mary Wanjiku", units[0].TenantName)
	require.NotNil(t, units[0].TenantID)
	assert.Equal(t, mary.ID, *units[0].TenantID)

	assert.Equal(t, "A2", units[1].UnitNumber)
	assert.False(t, units[1].IsOccupied)
	assert.Equal(t, domain.VacantLabel, units[1].TenantName)
	assert.Nil(t, units[1].TenantID)
}

func TestNotFound(t *testing.T) {
	svc, seed := newTestService(t)
	missing := seed.Node.Generate()

	_, err := svc.GetProperty(context.Background(), missing)
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)

	_, err = svc.ListUnits(context.Background(), missing)
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)

	_, err = svc.GetTenant(context.Background(), missing)
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}
