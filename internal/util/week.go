package util

import "time"

// Week is a Monday-start week of a partitioned year.
// Days is authoritative for bucketing; Start and End are display labels.
type Week struct {
	Number int          `json:"number"`
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Days   [7]time.Time `json:"days"`
}

// PartitionYear splits year into Monday-start weeks.
//
// Days before the first Monday of the year belong to no week. The last week
// always holds 7 days and may run into January of the next year.
func PartitionYear(year int) []Week {
	start := FirstMonday(year)
	boundary := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	weeks := make([]Week, 0, 53)
	for from := start; from.Before(boundary); from = from.AddDate(0, 0, 7) {
		w := Week{
			Number: len(weeks) + 1,
			Start:  from,
			End:    from.AddDate(0, 0, 6),
		}
		for i := range w.Days {
			w.Days[i] = from.AddDate(0, 0, i)
		}
		weeks = append(weeks, w)
	}
	return weeks
}

// WeekOf returns week number n (1-based) of year
func WeekOf(year, n int) (Week, bool) {
	weeks := PartitionYear(year)
	if n < 1 || n > len(weeks) {
		return Week{}, false
	}
	return weeks[n-1], true
}

// FirstMonday returns the first Monday on or after January 1 of year
func FirstMonday(year int) time.Time {
	d := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Monday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}
