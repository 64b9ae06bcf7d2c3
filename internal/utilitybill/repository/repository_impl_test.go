package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jkestates/estatedesk/internal/testutil"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPeriod(t *testing.T, value string) billdomain.Period {
	t.Helper()
	p, err := billdomain.ParsePeriod(value)
	require.NoError(t, err)
	return p
}

func TestLatestBefore(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	seed := testutil.NewSeeder(t, db)
	r := Provide()
	ctx := context.Background()

	property := seed.Property("Greenview")
	unit := seed.Unit(property.ID, "A1")
	empty := seed.Unit(property.ID, "A2")
	seed.Bill(unit.ID, "2025-01", 0, 80, 15)
	seed.Bill(unit.ID, "2025-02", 80, 120, 15)
	seed.Bill(unit.ID, "2025-03", 120, 150, 15)

	bill, err := r.LatestBefore(ctx, db, unit.ID, mustPeriod(t, "2025-03"))
	require.NoError(t, err)
	require.NotNil(t, bill)
	assert.True(t, bill.CurrentReading.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, "2025-02-01", bill.Period().String())

	// the target month itself is never its own history
	bill, err = r.LatestBefore(ctx, db, unit.ID, mustPeriod(t, "2025-01"))
	require.NoError(t, err)
	assert.Nil(t, bill)

	bill, err = r.LatestBefore(ctx, db, unit.ID, mustPeriod(t, "2025-07"))
	require.NoError(t, err)
	require.NotNil(t, bill)
	assert.True(t, bill.CurrentReading.Equal(decimal.NewFromInt(150)))

	bill, err = r.LatestBefore(ctx, db, empty.ID, mustPeriod(t, "2025-03"))
	require.NoError(t, err)
	assert.Nil(t, bill)
}

func TestListByUnitsAndPeriod(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	seed := testutil.NewSeeder(t, db)
	r := Provide()
	ctx := context.Background()

	property := seed.Property("Greenview")
	a1 := seed.Unit(property.ID, "A1")
	a2 := seed.Unit(property.ID, "A2")
	other := seed.Unit(seed.Property("Hillside").ID, "H1")
	seed.Bill(a1.ID, "2025-03", 0, 30, 15)
	seed.Bill(a2.ID, "2025-03", 50, 80, 15)
	seed.Bill(a2.ID, "2025-02", 20, 50, 15)
	seed.Bill(other.ID, "2025-03", 0, 10, 15)

	bills, err := r.ListByUnitsAndPeriod(ctx, db, []snowflake.ID{a1.ID, a2.ID}, mustPeriod(t, "2025-03-17"))
	require.NoError(t, err)
	require.Len(t, bills, 2)
	for _, b := range bills {
		assert.Equal(t, "2025-03-01", b.Period().String())
		assert.NotEqual(t, other.ID, b.UnitID)
	}

	bills, err = r.ListByUnitsAndPeriod(ctx, db, nil, mustPeriod(t, "2025-03"))
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestInsertDuplicateIsConflict(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	seed := testutil.NewSeeder(t, db)
	r := Provide()
	ctx := context.Background()

	unit := seed.Unit(seed.Property("Greenview").ID, "A1")
	existing := seed.Bill(unit.ID, "2025-03", 0, 30, 15)

	dup := existing
	dup.ID = seed.Node.Generate()
	err := r.Insert(ctx, db, &dup)
	require.Error(t, err)
	require.ErrorIs(t, err, billdomain.ErrConflict)

	var conflict *billdomain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, billdomain.ConflictDuplicate, conflict.Reason)
}

func TestUpdateChecksVersion(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	seed := testutil.NewSeeder(t, db)
	r := Provide()
	ctx := context.Background()

	unit := seed.Unit(seed.Property("Greenview").ID, "A1")
	bill := seed.Bill(unit.ID, "2025-03", 0, 30, 15)

	edited := bill
	edited.CurrentReading = decimal.NewFromInt(40)
	edited.UnitsConsumed = decimal.NewFromInt(40)
	edited.TotalAmount = decimal.NewFromInt(600)
	require.NoError(t, r.Update(ctx, db, &edited))
	assert.Equal(t, int64(2), edited.Version)

	// a second writer still holding version 1
	stale := bill
	stale.CurrentReading = decimal.NewFromInt(45)
	err := r.Update(ctx, db, &stale)
	var conflict *billdomain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, billdomain.ConflictStale, conflict.Reason)

	stored, err := r.ListByUnitsAndPeriod(ctx, db, []snowflake.ID{unit.ID}, mustPeriod(t, "2025-03"))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].CurrentReading.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, int64(2), stored[0].Version)
}

func TestInsertPostgresUniqueViolation(t *testing.T) {
	mockDB := testutil.NewMockPostgres(t)
	mockDB.Mock.ExpectExec(regexp.QuoteMeta("INSERT INTO utility_bills")).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "ux_utility_bills_unit_month"})

	bill := &billdomain.UtilityBill{ID: 1, UnitID: 2, BillingMonth: mustPeriod(t, "2025-03").Date()}
	err := Provide().Insert(context.Background(), mockDB.DB, bill)
	require.ErrorIs(t, err, billdomain.ErrConflict)
	require.NoError(t, mockDB.Mock.ExpectationsWereMet())
}

func TestInsertPostgresOtherErrorPassesThrough(t *testing.T) {
	mockDB := testutil.NewMockPostgres(t)
	mockDB.Mock.ExpectExec(regexp.QuoteMeta("INSERT INTO utility_bills")).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.CheckViolation})

	bill := &billdomain.UtilityBill{ID: 1, UnitID: 2, BillingMonth: mustPeriod(t, "2025-03").Date()}
	err := Provide().Insert(context.Background(), mockDB.DB, bill)
	require.Error(t, err)
	assert.NotErrorIs(t, err, billdomain.ErrConflict)
}
