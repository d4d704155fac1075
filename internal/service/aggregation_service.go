package service

import (
	"context"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	MinAggregateYear = 1970
	MaxAggregateYear = 9999

	// DefaultAggregateConcurrency bounds the bucket lookups in flight per request
	DefaultAggregateConcurrency = 4
)

// AggregationConfig tunes AggregationService
type AggregationConfig struct {
	Concurrency  int
	FebruaryMode util.FebruaryMode
}

// AggregationService builds bucketed income and expense series from charges
type AggregationService struct {
	chargeRepo   domain.ChargeRepository
	concurrency  int
	februaryMode util.FebruaryMode
}

// NewAggregationService creates a new AggregationService
func NewAggregationService(chargeRepo domain.ChargeRepository, cfg AggregationConfig) *AggregationService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultAggregateConcurrency
	}
	if cfg.FebruaryMode == "" {
		cfg.FebruaryMode = util.FebruaryLegacy
	}
	return &AggregationService{
		chargeRepo:   chargeRepo,
		concurrency:  cfg.Concurrency,
		februaryMode: cfg.FebruaryMode,
	}
}

// Aggregate returns the total and per-category series of scope for one period.
//
// Week and month granularities bucket by day, year buckets by month. index is
// the 1-based week or month number and is ignored for year. Every bucket is
// looked up independently; the fold runs in bucket order once all lookups
// have returned.
func (s *AggregationService) Aggregate(ctx context.Context, scope domain.Scope, granularity domain.Granularity, year, index int) (*domain.Aggregate, error) {
	buckets, err := s.Buckets(granularity, year, index)
	if err != nil {
		return nil, err
	}
	if granularity == domain.GranularityYear {
		index = 0
	}

	results := make([][]*domain.ChargeRecord, len(buckets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, bucket := range buckets {
		g.Go(func() error {
			records, err := s.lookup(gctx, scope, bucket)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).
			Str("scope", scope.String()).
			Str("granularity", string(granularity)).
			Int("year", year).
			Int("index", index).
			Msg("Failed to load charges for aggregation")
		return nil, err
	}

	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}

	agg := &domain.Aggregate{
		Granularity: granularity,
		Year:        year,
		Index:       index,
		Total:       domain.NewSeries(labels),
		Items:       make(map[string]*domain.Series),
	}
	for i, records := range results {
		for _, r := range records {
			agg.Total.Add(i, r.Polarity, r.Amount)

			item, ok := agg.Items[r.CategoryKey]
			if !ok {
				item = domain.NewSeries(labels)
				agg.Items[r.CategoryKey] = item
			}
			item.Add(i, r.Polarity, r.Amount)
		}
	}

	return agg, nil
}

// Buckets returns the time slots of a period, validating granularity, year and index
func (s *AggregationService) Buckets(granularity domain.Granularity, year, index int) ([]domain.Bucket, error) {
	if year < MinAggregateYear || year > MaxAggregateYear {
		return nil, domain.ErrInvalidYear
	}

	switch granularity {
	case domain.GranularityWeek:
		week, ok := util.WeekOf(year, index)
		if !ok {
			return nil, domain.ErrInvalidPeriodIndex
		}
		buckets := make([]domain.Bucket, len(week.Days))
		for i, day := range week.Days {
			buckets[i] = domain.Bucket{Label: domain.WeekdayLabels[i], Day: &day}
		}
		return buckets, nil

	case domain.GranularityMonth:
		if index < 1 || index > 12 {
			return nil, domain.ErrInvalidPeriodIndex
		}
		days := util.MonthDays(year, time.Month(index))
		buckets := make([]domain.Bucket, len(days))
		for i, day := range days {
			buckets[i] = domain.Bucket{Label: day.Format("2006-01-02"), Day: &day}
		}
		return buckets, nil

	case domain.GranularityYear:
		buckets := make([]domain.Bucket, 12)
		for m := time.January; m <= time.December; m++ {
			start, end := util.MonthRange(year, m, s.februaryMode)
			buckets[m-1] = domain.Bucket{Label: start.Format("2006-01"), Start: start, End: end}
		}
		return buckets, nil
	}

	return nil, domain.ErrInvalidGranularity
}

func (s *AggregationService) lookup(ctx context.Context, scope domain.Scope, b domain.Bucket) ([]*domain.ChargeRecord, error) {
	if b.Day != nil {
		return s.chargeRepo.FindByOwnerAndDate(ctx, scope, *b.Day)
	}
	return s.chargeRepo.FindByOwnerAndDateRange(ctx, scope, b.Start, b.End)
}

// Summarize groups the charges matching filters by category and totals them
// by polarity. A complete range wins over an exact date.
func (s *AggregationService) Summarize(ctx context.Context, scope domain.Scope, filters domain.ChargeFilters) (*domain.ChargeSummary, error) {
	if (filters.RangeStart == nil) != (filters.RangeEnd == nil) {
		return nil, domain.ErrInvalidDateRange
	}
	if filters.HasRange() {
		if filters.RangeEnd.Before(*filters.RangeStart) {
			return nil, domain.ErrInvalidDateRange
		}
		filters.Date = nil
	}
	if filters.Polarity != nil && !filters.Polarity.Valid() {
		return nil, domain.ErrInvalidPolarity
	}

	records, err := s.chargeRepo.FindByOwnerAndFilters(ctx, scope, filters)
	if err != nil {
		log.Error().Err(err).Str("scope", scope.String()).Msg("Failed to load charges for summary")
		return nil, err
	}

	summary := &domain.ChargeSummary{
		Result: records,
		Items:  make([]domain.CategorySummary, 0),
		Total: domain.SummaryTotal{
			Income: decimal.Zero,
			Spend:  decimal.Zero,
		},
	}

	// Items keep the order in which categories first appear
	positions := make(map[string]int)
	for _, r := range records {
		pos, ok := positions[r.CategoryKey]
		if !ok {
			pos = len(summary.Items)
			positions[r.CategoryKey] = pos
			summary.Items = append(summary.Items, domain.CategorySummary{
				CategoryKey: r.CategoryKey,
				Polarity:    r.Polarity,
				Money:       decimal.Zero,
			})
		}
		summary.Items[pos].Money = summary.Items[pos].Money.Add(r.Amount).Round(domain.AmountScale)
	}

	for _, item := range summary.Items {
		if item.Polarity == domain.PolarityIncome {
			summary.Total.Income = summary.Total.Income.Add(item.Money).Round(domain.AmountScale)
		} else {
			summary.Total.Spend = summary.Total.Spend.Add(item.Money).Round(domain.AmountScale)
		}
	}

	return summary, nil
}

// Recent returns the charges of scope within [start, end], oldest first
func (s *AggregationService) Recent(ctx context.Context, scope domain.Scope, start, end time.Time) ([]*domain.ChargeRecord, error) {
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}
	return s.chargeRepo.FindByOwnerAndDateRange(ctx, scope, start, end)
}
