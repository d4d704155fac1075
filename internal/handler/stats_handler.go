package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// StatsHandler serves bucketed spend and income series
type StatsHandler struct {
	scopes             ScopeResolver
	aggregationService *service.AggregationService

	now func() time.Time
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(scopes ScopeResolver, aggregationService *service.AggregationService) *StatsHandler {
	return &StatsHandler{
		scopes:             scopes,
		aggregationService: aggregationService,
		now:                time.Now,
	}
}

// SeriesResponse holds one value per bucket, formatted to two decimals
type SeriesResponse struct {
	Buckets []string `json:"buckets"`
	Spend   []string `json:"spend"`
	Income  []string `json:"income"`
}

// StatsResponse represents an aggregation in API responses
type StatsResponse struct {
	TimeType string                    `json:"timeType"`
	Year     int                       `json:"year"`
	Index    int                       `json:"index"`
	Total    SeriesResponse            `json:"total"`
	Items    map[string]SeriesResponse `json:"items"`
}

// GetStats handles GET /api/v1/stats?timeType=&year=&index=
// @Summary Spend and income per bucket for a week, month or year
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param timeType query string true "week, month or year"
// @Param year query int false "Calendar year, defaults to the current one"
// @Param index query int false "1-based week or month number, ignored for year"
// @Success 200 {object} StatsResponse
// @Failure 400 {object} ProblemDetails
// @Router /stats [get]
func (h *StatsHandler) GetStats(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}

	granularity, err := domain.ParseGranularity(c.QueryParam("timeType"))
	if err != nil {
		return NewValidationError(c, "Invalid time type", []ValidationError{
			{Field: "timeType", Message: "Must be one of: week, month, year"},
		})
	}

	year := h.now().Year()
	if raw := c.QueryParam("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			return NewValidationError(c, "Invalid year", []ValidationError{
				{Field: "year", Message: "Must be a number"},
			})
		}
	}

	index := 0
	if raw := c.QueryParam("index"); raw != "" {
		index, err = strconv.Atoi(raw)
		if err != nil {
			return NewValidationError(c, "Invalid index", []ValidationError{
				{Field: "index", Message: "Must be a number"},
			})
		}
	}

	aggregate, err := h.aggregationService.Aggregate(c.Request().Context(), scope, granularity, year, index)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidYear):
			return NewValidationError(c, "Invalid year", []ValidationError{
				{Field: "year", Message: "Year is out of range"},
			})
		case errors.Is(err, domain.ErrInvalidPeriodIndex):
			return NewValidationError(c, "Invalid index", []ValidationError{
				{Field: "index", Message: "No such week or month in this year"},
			})
		case errors.Is(err, domain.ErrInvalidGranularity):
			return NewValidationError(c, "Invalid time type", nil)
		}
		log.Error().Err(err).
			Str("scope", scope.String()).
			Str("time_type", string(granularity)).
			Int("year", year).
			Int("index", index).
			Msg("Failed to aggregate charges")
		return NewInternalError(c, "Failed to load statistics")
	}

	return c.JSON(http.StatusOK, toStatsResponse(aggregate))
}

func toSeriesResponse(s *domain.Series) SeriesResponse {
	return SeriesResponse{
		Buckets: s.Buckets,
		Spend:   formatAmounts(s.Spend),
		Income:  formatAmounts(s.Income),
	}
}

func formatAmounts(values []decimal.Decimal) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.StringFixed(domain.AmountScale)
	}
	return out
}

func toStatsResponse(a *domain.Aggregate) StatsResponse {
	resp := StatsResponse{
		TimeType: string(a.Granularity),
		Year:     a.Year,
		Index:    a.Index,
		Total:    toSeriesResponse(a.Total),
		Items:    make(map[string]SeriesResponse, len(a.Items)),
	}
	for key, series := range a.Items {
		resp.Items[key] = toSeriesResponse(series)
	}
	return resp
}
