package util

import (
	"fmt"
	"time"
)

// FebruaryMode selects how many days February has when a month range is built
type FebruaryMode string

const (
	// FebruaryLegacy always gives February 28 days, matching figures that were
	// stored before leap years were taken into account
	FebruaryLegacy FebruaryMode = "legacy"
	// FebruaryCalendar uses the real calendar
	FebruaryCalendar FebruaryMode = "calendar"
)

// ParseFebruaryMode validates a configured mode. Empty means legacy.
func ParseFebruaryMode(s string) (FebruaryMode, error) {
	switch FebruaryMode(s) {
	case "", FebruaryLegacy:
		return FebruaryLegacy, nil
	case FebruaryCalendar:
		return FebruaryCalendar, nil
	}
	return "", fmt.Errorf("unknown february mode %q", s)
}

var legacyDaysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the day count of month in year under mode
func DaysInMonth(year int, month time.Month, mode FebruaryMode) int {
	if mode == FebruaryCalendar {
		// Day 0 of the next month is the last day of this one
		return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	}
	return legacyDaysInMonth[month-1]
}

// MonthRange returns the first and last day of month in year under mode
func MonthRange(year int, month time.Month, mode FebruaryMode) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, month, DaysInMonth(year, month, mode), 0, 0, 0, 0, time.UTC)
	return start, end
}

// MonthDays returns every valid calendar day of month in year, ascending.
// Days that would roll over into the next month are skipped.
func MonthDays(year int, month time.Month) []time.Time {
	days := make([]time.Time, 0, 31)
	for d := 1; d <= 31; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		if date.Month() != month {
			continue
		}
		days = append(days, date)
	}
	return days
}
