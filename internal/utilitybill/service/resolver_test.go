package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/jkestates/estatedesk/internal/testutil"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolvePreviousReadingCarriesForward(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	seed := testutil.NewSeeder(t, db)
	resolver := NewResolver(newParams(t, db))
	ctx := context.Background()

	property := seed.Property("Greenview")
	billed := seed.Unit(property.ID, "A1")
	fresh := seed.Unit(property.ID, "A2")
	seed.Bill(billed.ID, "2025-02", 70, 120, 15)

	got, err := resolver.ResolvePreviousReading(ctx, billed.ID, period(t, "2025-03"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d(120)), got.String())

	// months without a bill in between still carry the last reading
	got, err = resolver.ResolvePreviousReading(ctx, billed.ID, period(t, "2025-06"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d(120)))

	got, err = resolver.ResolvePreviousReading(ctx, billed.ID, period(t, "2025-02"))
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	for _, p := range []string{"2024-01", "2025-03", "2030-12"} {
		got, err = resolver.ResolvePreviousReading(ctx, fresh.ID, period(t, p))
		require.NoError(t, err)
		assert.True(t, got.IsZero(), p)
	}
}

func TestResolvePreviousReadingFailureIsTransient(t *testing.T) {
	bills := &billsMock{}
	bills.On("LatestBefore", mock.Anything, mock.Anything, snowflake.ID(9), mock.Anything).
		Return(nil, errors.New("connection reset by peer"))

	p := newParams(t, nil)
	p.Bills = bills
	resolver := NewResolver(p)

	got, err := resolver.ResolvePreviousReading(context.Background(), snowflake.ID(9), period(t, "2025-03"))
	require.ErrorIs(t, err, billdomain.ErrTransient)
	assert.True(t, got.IsZero())
	bills.AssertExpectations(t)
}

func TestResolvePreviousReadingRequiresPeriod(t *testing.T) {
	resolver := NewResolver(newParams(t, nil))
	_, err := resolver.ResolvePreviousReading(context.Background(), snowflake.ID(1), billdomain.Period{})
	require.ErrorIs(t, err, billdomain.ErrInvalidPeriod)
}
