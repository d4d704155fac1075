package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGranularity(t *testing.T) {
	for _, s := range []string{"week", "month", "year"} {
		g, err := ParseGranularity(s)
		require.NoError(t, err)
		assert.Equal(t, Granularity(s), g)
	}

	for _, s := range []string{"", "day", "WEEK", "quarter"} {
		_, err := ParseGranularity(s)
		assert.ErrorIs(t, err, ErrInvalidGranularity, s)
	}
}

func TestNewSeries_ZeroFilled(t *testing.T) {
	s := NewSeries([]string{"a", "b", "c"})

	require.Len(t, s.Spend, 3)
	require.Len(t, s.Income, 3)
	for i := range s.Buckets {
		assert.True(t, s.Spend[i].IsZero())
		assert.True(t, s.Income[i].IsZero())
	}
}

func TestSeries_AddRoundsEveryStep(t *testing.T) {
	s := NewSeries([]string{"x"})

	s.Add(0, PolarityExpense, decimal.RequireFromString("0.005"))
	s.Add(0, PolarityExpense, decimal.RequireFromString("0.005"))

	// 0.005 rounds to 0.01 after the first step, then 0.015 rounds to 0.02.
	// Rounding once at the end would give 0.01.
	assert.Equal(t, "0.02", s.Spend[0].StringFixed(2))
	assert.True(t, s.Income[0].IsZero())
}

func TestSeries_AddByPolarity(t *testing.T) {
	s := NewSeries([]string{"x", "y"})

	s.Add(1, PolarityIncome, decimal.NewFromInt(10))
	s.Add(1, PolarityExpense, decimal.RequireFromString("49.995"))

	assert.Equal(t, "10.00", s.Income[1].StringFixed(2))
	assert.Equal(t, "50.00", s.Spend[1].StringFixed(2))
	assert.True(t, s.Spend[0].IsZero())
}
