package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/testutil"
	"github.com/dafibh/tally/tally-backend/internal/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func charge(scope domain.Scope, key string, polarity domain.Polarity, amount string, on time.Time) *domain.ChargeRecord {
	return &domain.ChargeRecord{
		Scope:       scope,
		CategoryKey: key,
		Polarity:    polarity,
		Amount:      decimal.RequireFromString(amount),
		OccurredOn:  on,
		Status:      domain.StatusActive,
	}
}

func newAggregationService(repo domain.ChargeRepository, mode util.FebruaryMode) *AggregationService {
	return NewAggregationService(repo, AggregationConfig{Concurrency: 4, FebruaryMode: mode})
}

func assertAllZero(t *testing.T, values []decimal.Decimal) {
	t.Helper()
	for i, v := range values {
		assert.True(t, v.IsZero(), "bucket %d = %s, want 0", i, v)
	}
}

func TestAggregate_WeekWithoutRecords(t *testing.T) {
	repo := testutil.NewMockChargeRepository()
	svc := newAggregationService(repo, util.FebruaryLegacy)

	agg, err := svc.Aggregate(context.Background(), domain.PersonalScope(1), domain.GranularityWeek, 2024, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}, agg.Total.Buckets)
	assert.Len(t, agg.Total.Spend, 7)
	assert.Len(t, agg.Total.Income, 7)
	assertAllZero(t, agg.Total.Spend)
	assertAllZero(t, agg.Total.Income)
	assert.Empty(t, agg.Items)
	assert.Equal(t, 7, repo.CallCount("FindByOwnerAndDate"))
}

func TestAggregate_WeekBucketsByDay(t *testing.T) {
	scope := domain.PersonalScope(1)
	repo := testutil.NewMockChargeRepository()
	// Week 1 of 2025 runs Mon Jan 6 to Sun Jan 12
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "12.50", day(2025, 1, 6)))
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "7.50", day(2025, 1, 6)))
	repo.AddCharge(charge(scope, "salary", domain.PolarityIncome, "1000", day(2025, 1, 10)))
	// Jan 1-5 belong to no week
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "99", day(2025, 1, 1)))
	// Other scopes are not visible
	repo.AddCharge(charge(domain.TeamScope(1), "food", domain.PolarityExpense, "5", day(2025, 1, 6)))

	svc := newAggregationService(repo, util.FebruaryLegacy)

	agg, err := svc.Aggregate(context.Background(), scope, domain.GranularityWeek, 2025, 1)
	require.NoError(t, err)

	assert.Equal(t, "20.00", agg.Total.Spend[0].StringFixed(2))
	assert.Equal(t, "1000.00", agg.Total.Income[4].StringFixed(2))
	for i := 1; i < 7; i++ {
		assert.True(t, agg.Total.Spend[i].IsZero(), "spend on day %d", i)
	}

	require.Contains(t, agg.Items, "food")
	require.Contains(t, agg.Items, "salary")
	assert.Len(t, agg.Items, 2)
	assert.Equal(t, "20.00", agg.Items["food"].Spend[0].StringFixed(2))
	assertAllZero(t, agg.Items["food"].Income)
	assert.Equal(t, "1000.00", agg.Items["salary"].Income[4].StringFixed(2))
	assert.Len(t, agg.Items["salary"].Buckets, 7)
}

func TestAggregate_MonthSkipsInvalidDays(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		want  int
	}{
		{"30-day month", 2024, 4, 30},
		{"31-day month", 2024, 1, 31},
		{"leap february", 2024, 2, 29},
		{"february", 2023, 2, 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAggregationService(testutil.NewMockChargeRepository(), util.FebruaryLegacy)

			agg, err := svc.Aggregate(context.Background(), domain.PersonalScope(1), domain.GranularityMonth, tt.year, tt.month)
			require.NoError(t, err)

			require.Len(t, agg.Total.Buckets, tt.want)
			first := time.Date(tt.year, time.Month(tt.month), 1, 0, 0, 0, 0, time.UTC)
			for i, label := range agg.Total.Buckets {
				assert.Equal(t, first.AddDate(0, 0, i).Format("2006-01-02"), label)
			}
		})
	}
}

func TestAggregate_YearRoundsEveryStep(t *testing.T) {
	scope := domain.PersonalScope(1)
	repo := testutil.NewMockChargeRepository()
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "49.995", day(2024, 3, 14)))
	repo.AddCharge(charge(scope, "gift", domain.PolarityIncome, "10", day(2024, 3, 20)))

	svc := newAggregationService(repo, util.FebruaryLegacy)

	agg, err := svc.Aggregate(context.Background(), scope, domain.GranularityYear, 2024, 0)
	require.NoError(t, err)

	require.Len(t, agg.Total.Buckets, 12)
	assert.Equal(t, "2024-01", agg.Total.Buckets[0])
	assert.Equal(t, "2024-12", agg.Total.Buckets[11])

	assert.Equal(t, "50.00", agg.Total.Spend[2].StringFixed(2))
	assert.Equal(t, "10.00", agg.Total.Income[2].StringFixed(2))
	for m := 0; m < 12; m++ {
		if m == 2 {
			continue
		}
		assert.True(t, agg.Total.Spend[m].IsZero(), "month %d spend", m+1)
		assert.True(t, agg.Total.Income[m].IsZero(), "month %d income", m+1)
	}
	assert.Equal(t, 12, repo.CallCount("FindByOwnerAndDateRange"))
}

func TestAggregate_YearIgnoresIndex(t *testing.T) {
	svc := newAggregationService(testutil.NewMockChargeRepository(), util.FebruaryLegacy)

	agg, err := svc.Aggregate(context.Background(), domain.PersonalScope(1), domain.GranularityYear, 2024, 77)
	require.NoError(t, err)
	assert.Equal(t, 0, agg.Index)
}

func TestAggregate_FebruaryMode(t *testing.T) {
	scope := domain.PersonalScope(1)
	repo := testutil.NewMockChargeRepository()
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "5", day(2024, 2, 29)))

	legacy := newAggregationService(repo, util.FebruaryLegacy)
	agg, err := legacy.Aggregate(context.Background(), scope, domain.GranularityYear, 2024, 0)
	require.NoError(t, err)
	assert.True(t, agg.Total.Spend[1].IsZero(), "legacy mode ends February on the 28th")
	assert.True(t, agg.Total.Spend[2].IsZero())

	calendar := newAggregationService(repo, util.FebruaryCalendar)
	agg, err = calendar.Aggregate(context.Background(), scope, domain.GranularityYear, 2024, 0)
	require.NoError(t, err)
	assert.Equal(t, "5.00", agg.Total.Spend[1].StringFixed(2))
}

func TestAggregate_AssemblesInBucketOrder(t *testing.T) {
	scope := domain.PersonalScope(1)
	repo := testutil.NewMockChargeRepository()
	rng := rand.New(rand.NewSource(1))
	delays := make(map[time.Time]time.Duration)
	for d := 1; d <= 31; d++ {
		on := day(2024, 1, d)
		delays[on] = time.Duration(rng.Intn(3)) * time.Millisecond
		repo.AddCharge(charge(scope, "food", domain.PolarityExpense, decimal.NewFromInt(int64(d)).String(), on))
	}
	slow := &delayedChargeRepo{MockChargeRepository: repo, delays: delays}

	svc := NewAggregationService(slow, AggregationConfig{Concurrency: 8})

	agg, err := svc.Aggregate(context.Background(), scope, domain.GranularityMonth, 2024, 1)
	require.NoError(t, err)

	require.Len(t, agg.Total.Spend, 31)
	for i, v := range agg.Total.Spend {
		assert.Equal(t, decimal.NewFromInt(int64(i+1)).StringFixed(2), v.StringFixed(2), "bucket %d", i)
	}
}

// delayedChargeRepo slows day lookups down so they complete out of order
type delayedChargeRepo struct {
	*testutil.MockChargeRepository
	delays map[time.Time]time.Duration
}

func (r *delayedChargeRepo) FindByOwnerAndDate(ctx context.Context, scope domain.Scope, date time.Time) ([]*domain.ChargeRecord, error) {
	time.Sleep(r.delays[date])
	return r.MockChargeRepository.FindByOwnerAndDate(ctx, scope, date)
}

func TestAggregate_StoreErrorIsReturned(t *testing.T) {
	repo := testutil.NewMockChargeRepository()
	boom := errors.New("connection reset")
	repo.FindByOwnerAndDateFn = func(scope domain.Scope, date time.Time) ([]*domain.ChargeRecord, error) {
		if date.Weekday() == time.Wednesday {
			return nil, boom
		}
		return nil, nil
	}
	svc := newAggregationService(repo, util.FebruaryLegacy)

	_, err := svc.Aggregate(context.Background(), domain.PersonalScope(1), domain.GranularityWeek, 2024, 2)
	assert.ErrorIs(t, err, boom)
}

func TestAggregate_ValidationHappensBeforeQuerying(t *testing.T) {
	tests := []struct {
		name        string
		granularity domain.Granularity
		year        int
		index       int
		wantErr     error
	}{
		{"unknown granularity", domain.Granularity("day"), 2024, 1, domain.ErrInvalidGranularity},
		{"week 0", domain.GranularityWeek, 2024, 0, domain.ErrInvalidPeriodIndex},
		{"week past the year", domain.GranularityWeek, 2025, 53, domain.ErrInvalidPeriodIndex},
		{"month 0", domain.GranularityMonth, 2024, 0, domain.ErrInvalidPeriodIndex},
		{"month 13", domain.GranularityMonth, 2024, 13, domain.ErrInvalidPeriodIndex},
		{"year too small", domain.GranularityYear, 1969, 0, domain.ErrInvalidYear},
		{"year too large", domain.GranularityYear, 10000, 0, domain.ErrInvalidYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockChargeRepository()
			svc := newAggregationService(repo, util.FebruaryLegacy)

			_, err := svc.Aggregate(context.Background(), domain.PersonalScope(1), tt.granularity, tt.year, tt.index)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, repo.CallCount("FindByOwnerAndDate"))
			assert.Zero(t, repo.CallCount("FindByOwnerAndDateRange"))
		})
	}
}

func TestSummarize_GroupsByCategory(t *testing.T) {
	scope := domain.PersonalScope(1)
	repo := testutil.NewMockChargeRepository()
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "10.10", day(2024, 5, 1)))
	repo.AddCharge(charge(scope, "rent", domain.PolarityExpense, "500", day(2024, 5, 2)))
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "4.905", day(2024, 5, 3)))
	repo.AddCharge(charge(scope, "salary", domain.PolarityIncome, "2000", day(2024, 5, 3)))
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "99", day(2024, 6, 1)))

	svc := newAggregationService(repo, util.FebruaryLegacy)
	start, end := day(2024, 5, 1), day(2024, 5, 31)

	summary, err := svc.Summarize(context.Background(), scope, domain.ChargeFilters{RangeStart: &start, RangeEnd: &end})
	require.NoError(t, err)

	assert.Len(t, summary.Result, 4)
	require.Len(t, summary.Items, 3)
	assert.Equal(t, "food", summary.Items[0].CategoryKey)
	assert.Equal(t, "15.01", summary.Items[0].Money.StringFixed(2))
	assert.Equal(t, "rent", summary.Items[1].CategoryKey)
	assert.Equal(t, "salary", summary.Items[2].CategoryKey)
	assert.Equal(t, domain.PolarityIncome, summary.Items[2].Polarity)

	assert.Equal(t, "515.01", summary.Total.Spend.StringFixed(2))
	assert.Equal(t, "2000.00", summary.Total.Income.StringFixed(2))
}

func TestSummarize_RangeWinsOverDate(t *testing.T) {
	scope := domain.PersonalScope(1)
	repo := testutil.NewMockChargeRepository()
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "1", day(2024, 5, 1)))
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "2", day(2024, 5, 2)))

	svc := newAggregationService(repo, util.FebruaryLegacy)
	date := day(2024, 5, 1)
	start, end := day(2024, 5, 1), day(2024, 5, 2)

	summary, err := svc.Summarize(context.Background(), scope, domain.ChargeFilters{Date: &date, RangeStart: &start, RangeEnd: &end})
	require.NoError(t, err)
	assert.Len(t, summary.Result, 2)
	assert.Equal(t, "3.00", summary.Total.Spend.StringFixed(2))
}

func TestSummarize_ExactDate(t *testing.T) {
	scope := domain.PersonalScope(1)
	repo := testutil.NewMockChargeRepository()
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "1", day(2024, 5, 1)))
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "2", day(2024, 5, 2)))

	svc := newAggregationService(repo, util.FebruaryLegacy)
	date := day(2024, 5, 2)

	summary, err := svc.Summarize(context.Background(), scope, domain.ChargeFilters{Date: &date})
	require.NoError(t, err)
	require.Len(t, summary.Result, 1)
	assert.Equal(t, "2.00", summary.Total.Spend.StringFixed(2))
	assert.True(t, summary.Total.Income.IsZero())
}

func TestSummarize_Empty(t *testing.T) {
	svc := newAggregationService(testutil.NewMockChargeRepository(), util.FebruaryLegacy)

	summary, err := svc.Summarize(context.Background(), domain.PersonalScope(1), domain.ChargeFilters{})
	require.NoError(t, err)
	assert.Empty(t, summary.Result)
	assert.Empty(t, summary.Items)
	assert.True(t, summary.Total.Spend.IsZero())
}

func TestSummarize_InvalidRange(t *testing.T) {
	svc := newAggregationService(testutil.NewMockChargeRepository(), util.FebruaryLegacy)
	start, end := day(2024, 5, 2), day(2024, 5, 1)

	_, err := svc.Summarize(context.Background(), domain.PersonalScope(1), domain.ChargeFilters{RangeStart: &start, RangeEnd: &end})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = svc.Summarize(context.Background(), domain.PersonalScope(1), domain.ChargeFilters{RangeStart: &start})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestRecent(t *testing.T) {
	scope := domain.PersonalScope(1)
	repo := testutil.NewMockChargeRepository()
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "1", day(2024, 5, 3)))
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "2", day(2024, 5, 1)))
	repo.AddCharge(charge(scope, "food", domain.PolarityExpense, "3", day(2024, 4, 30)))

	svc := newAggregationService(repo, util.FebruaryLegacy)

	records, err := svc.Recent(context.Background(), scope, day(2024, 5, 1), time.Date(2024, 5, 3, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, day(2024, 5, 1), records[0].OccurredOn)
	assert.Equal(t, day(2024, 5, 3), records[1].OccurredOn)

	_, err = svc.Recent(context.Background(), scope, day(2024, 5, 3), day(2024, 5, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}
