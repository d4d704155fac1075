package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstMonday(t *testing.T) {
	tests := []struct {
		year int
		want time.Time
	}{
		{2024, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, // Jan 1 is a Monday
		{2023, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)}, // Sunday
		{2022, time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)}, // Saturday
		{2025, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)}, // Wednesday
	}

	for _, tt := range tests {
		got := FirstMonday(tt.year)
		assert.Equal(t, tt.want, got, "year %d", tt.year)
		assert.Equal(t, time.Monday, got.Weekday())
	}
}

func TestPartitionYear_CoversWithoutGapsOrOverlaps(t *testing.T) {
	for year := 1990; year <= 2040; year++ {
		weeks := PartitionYear(year)
		require.NotEmpty(t, weeks, "year %d", year)

		first := FirstMonday(year)
		nextFirst := FirstMonday(year + 1)

		expected := first
		for i, w := range weeks {
			assert.Equal(t, i+1, w.Number)
			assert.Equal(t, w.Days[0], w.Start)
			assert.Equal(t, w.Days[6], w.End)
			for _, d := range w.Days {
				assert.Equal(t, expected, d, "year %d week %d", year, w.Number)
				expected = expected.AddDate(0, 0, 1)
			}
		}
		// The last day covered is the Sunday before the next year's first Monday
		assert.Equal(t, nextFirst, expected, "year %d", year)
	}
}

func TestPartitionYear_DropsDaysBeforeFirstMonday(t *testing.T) {
	// 2025 starts on a Wednesday; Jan 1-5 belong to no week
	weeks := PartitionYear(2025)

	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, w := range weeks {
		for _, d := range w.Days {
			assert.False(t, d.Before(FirstMonday(2025)))
			assert.NotEqual(t, jan1, d)
		}
	}
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), weeks[0].Start)
}

func TestPartitionYear_LastWeekSpillsIntoNextYear(t *testing.T) {
	// Last Monday of 2024 is Dec 30; the week runs to Jan 5, 2025
	weeks := PartitionYear(2024)

	last := weeks[len(weeks)-1]
	assert.Equal(t, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), last.Start)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), last.End)
	assert.Len(t, weeks, 53)
}

func TestWeekOf(t *testing.T) {
	w, ok := WeekOf(2024, 1)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)

	_, ok = WeekOf(2024, 0)
	assert.False(t, ok)

	_, ok = WeekOf(2025, 53)
	assert.False(t, ok, "2025 has 52 weeks")
}
