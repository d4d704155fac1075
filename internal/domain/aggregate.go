package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Granularity selects the bucket size of an aggregation
type Granularity string

const (
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// ParseGranularity validates a client supplied granularity
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case GranularityWeek, GranularityMonth, GranularityYear:
		return g, nil
	}
	return "", ErrInvalidGranularity
}

// AmountScale is the number of decimal places kept on every accumulated amount
const AmountScale = 2

// WeekdayLabels are the positional labels of a week series
var WeekdayLabels = [7]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// Series holds one spend and one income value per bucket
type Series struct {
	Buckets []string          `json:"buckets"`
	Spend   []decimal.Decimal `json:"spend"`
	Income  []decimal.Decimal `json:"income"`
}

// NewSeries returns a zero-filled series over the given bucket labels
func NewSeries(buckets []string) *Series {
	s := &Series{
		Buckets: append([]string(nil), buckets...),
		Spend:   make([]decimal.Decimal, len(buckets)),
		Income:  make([]decimal.Decimal, len(buckets)),
	}
	for i := range buckets {
		s.Spend[i] = decimal.Zero
		s.Income[i] = decimal.Zero
	}
	return s
}

// Add accumulates amount into bucket i and rounds the running value
func (s *Series) Add(i int, polarity Polarity, amount decimal.Decimal) {
	if polarity == PolarityIncome {
		s.Income[i] = s.Income[i].Add(amount).Round(AmountScale)
		return
	}
	s.Spend[i] = s.Spend[i].Add(amount).Round(AmountScale)
}

// Aggregate is a bucketed view of one scope's charges
type Aggregate struct {
	Granularity Granularity        `json:"granularity"`
	Year        int                `json:"year"`
	Index       int                `json:"index"`
	Total       *Series            `json:"total"`
	Items       map[string]*Series `json:"items"`
}

// Bucket is one time slot of an aggregation. Either Day or the closed
// [Start, End] range is used for the lookup.
type Bucket struct {
	Label string
	Day   *time.Time
	Start time.Time
	End   time.Time
}

// CategorySummary is the per-category total of a summary
type CategorySummary struct {
	CategoryKey string          `json:"categoryKey"`
	Polarity    Polarity        `json:"polarity"`
	Money       decimal.Decimal `json:"money"`
}

// SummaryTotal holds the income and expense totals across categories
type SummaryTotal struct {
	Income decimal.Decimal `json:"income"`
	Spend  decimal.Decimal `json:"spend"`
}

// ChargeSummary groups a filtered record set by category
type ChargeSummary struct {
	Result []*ChargeRecord   `json:"result"`
	Items  []CategorySummary `json:"items"`
	Total  SummaryTotal      `json:"total"`
}
