package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func TestComputeIdentity(t *testing.T) {
	cases := []struct {
		prev, curr, rate string
	}{
		{"0", "30", "15"},
		{"50", "80", "15"},
		{"120", "120", "10"},
		{"10.5", "20.75", "12.5"},
		{"999", "1500", "0.35"},
	}

	for _, tc := range cases {
		got := Compute(dec(tc.prev), decPtr(tc.curr), dec(tc.rate))
		consumed := dec(tc.curr).Sub(dec(tc.prev))
		assert.True(t, consumed.Equal(got.UnitsConsumed), "consumed %s-%s", tc.curr, tc.prev)
		assert.True(t, consumed.Mul(dec(tc.rate)).Round(2).Equal(got.TotalAmount), "total %s", got.TotalAmount)
		assert.False(t, got.Regression)

		again := Compute(dec(tc.prev), decPtr(tc.curr), dec(tc.rate))
		assert.Equal(t, got, again)
	}
}

func TestComputeRoundsChargeToCents(t *testing.T) {
	exact := Compute(dec("10.25"), decPtr("20.75"), dec("12.40"))
	assert.True(t, exact.TotalAmount.Equal(dec("130.2")), exact.TotalAmount.String())

	// 0.50 * 0.125 = 0.0625
	rounded := Compute(dec("0"), decPtr("0.5"), dec("0.125"))
	assert.True(t, rounded.TotalAmount.Equal(dec("0.06")), rounded.TotalAmount.String())

	half := Compute(dec("0"), decPtr("0.1"), dec("0.05"))
	assert.True(t, half.TotalAmount.Equal(dec("0.01")), half.TotalAmount.String())
}

func TestCheckScale(t *testing.T) {
	assert.NoError(t, CheckScale(dec("30"), ReadingPlaces))
	assert.NoError(t, CheckScale(dec("30.25"), ReadingPlaces))
	assert.NoError(t, CheckScale(dec("30.2500"), ReadingPlaces))
	assert.ErrorIs(t, CheckScale(dec("30.255"), ReadingPlaces), ErrTooPrecise)

	assert.NoError(t, CheckScale(dec("0.1275"), RatePlaces))
	assert.ErrorIs(t, CheckScale(dec("0.12755"), RatePlaces), ErrTooPrecise)
}

func TestComputeClampsRegression(t *testing.T) {
	for _, tc := range [][2]string{{"50", "49"}, {"120", "0"}, {"1", "0.5"}} {
		got := Compute(dec(tc[0]), decPtr(tc[1]), dec("15"))
		assert.True(t, got.UnitsConsumed.IsZero())
		assert.True(t, got.TotalAmount.IsZero())
		assert.True(t, got.Regression)
	}
}

func TestComputeMissingInputs(t *testing.T) {
	got := Compute(dec("10"), nil, dec("15"))
	assert.True(t, got.UnitsConsumed.IsZero())
	assert.True(t, got.TotalAmount.IsZero())

	got = Compute(dec("10"), decPtr("25"), decimal.Zero)
	assert.True(t, got.UnitsConsumed.Equal(dec("15")))
	assert.True(t, got.TotalAmount.IsZero())
}

func TestLineAmountDueAndClone(t *testing.T) {
	line := Line{ArrearsBF: dec("200"), PreviousReading: dec("50"), CurrentReading: decPtr("80")}
	line.Recompute(dec("15"))
	assert.True(t, line.TotalAmount.Equal(dec("450")))
	assert.True(t, line.AmountDue().Equal(dec("650")))

	clone := line.Clone()
	*clone.CurrentReading = dec("1")
	assert.True(t, line.CurrentReading.Equal(dec("80")))
}
