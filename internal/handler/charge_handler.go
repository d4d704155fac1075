package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/middleware"
	"github.com/dafibh/tally/tally-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ChargeHandler handles charge HTTP requests
type ChargeHandler struct {
	scopes             ScopeResolver
	chargeService      *service.ChargeService
	aggregationService *service.AggregationService
}

// NewChargeHandler creates a new ChargeHandler
func NewChargeHandler(scopes ScopeResolver, chargeService *service.ChargeService, aggregationService *service.AggregationService) *ChargeHandler {
	return &ChargeHandler{
		scopes:             scopes,
		chargeService:      chargeService,
		aggregationService: aggregationService,
	}
}

// CreateChargeRequest represents the create charge request body
type CreateChargeRequest struct {
	CategoryKey string  `json:"categoryKey"`
	Amount      string  `json:"amount"`
	Date        *string `json:"date"`
	Note        string  `json:"note"`
}

// UpdateChargeRequest represents the update charge request body
type UpdateChargeRequest struct {
	Amount string `json:"amount"`
	Note   string `json:"note"`
}

// ChargeResponse represents a charge in API responses
type ChargeResponse struct {
	ID          int32  `json:"id"`
	CategoryKey string `json:"categoryKey"`
	Polarity    string `json:"polarity"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Note        string `json:"note"`
	CreatedBy   int32  `json:"createdBy"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// CategoryTotalResponse is one category line of a summary
type CategoryTotalResponse struct {
	CategoryKey string `json:"categoryKey"`
	Polarity    string `json:"polarity"`
	Money       string `json:"money"`
}

// SummaryResponse represents a filtered charge list with its totals
type SummaryResponse struct {
	Result []ChargeResponse        `json:"result"`
	Items  []CategoryTotalResponse `json:"items"`
	Total  map[string]string       `json:"total"`
}

// CreateCharge handles POST /api/v1/charges
// @Summary Record a charge
// @Tags charges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateChargeRequest true "Charge"
// @Success 201 {object} ChargeResponse
// @Failure 400 {object} ProblemDetails
// @Router /charges [post]
func (h *ChargeHandler) CreateCharge(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}

	var req CreateChargeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var occurredOn *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		occurredOn = &parsed
	}

	charge, err := h.chargeService.CreateCharge(c.Request().Context(), scope, middleware.GetUserID(c), service.CreateChargeInput{
		CategoryKey: req.CategoryKey,
		Amount:      amount,
		OccurredOn:  occurredOn,
		Note:        req.Note,
	})
	if err != nil {
		if resp := chargeError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("scope", scope.String()).Msg("Failed to create charge")
		return NewInternalError(c, "Failed to create charge")
	}

	log.Info().Str("scope", scope.String()).Int32("charge_id", charge.ID).Msg("Charge created")
	return c.JSON(http.StatusCreated, toChargeResponse(charge))
}

// SummarizeCharges handles GET /api/v1/charges
// @Summary List charges with per-category totals
// @Tags charges
// @Produce json
// @Security BearerAuth
// @Param date query string false "Exact day (YYYY-MM-DD)"
// @Param start query string false "Range start, requires end"
// @Param end query string false "Range end, requires start"
// @Param categoryKey query string false "Category key"
// @Param polarity query string false "expense or income"
// @Param mine query bool false "Only charges created by the caller"
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} ProblemDetails
// @Router /charges [get]
func (h *ChargeHandler) SummarizeCharges(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}

	var filters domain.ChargeFilters
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"date", &filters.Date},
		{"start", &filters.RangeStart},
		{"end", &filters.RangeEnd},
	} {
		raw := c.QueryParam(p.name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: p.name, Message: "Must be in YYYY-MM-DD format"},
			})
		}
		*p.dst = &parsed
	}

	if key := c.QueryParam("categoryKey"); key != "" {
		filters.CategoryKey = &key
	}
	if raw := c.QueryParam("polarity"); raw != "" {
		polarity, ok := parsePolarity(raw)
		if !ok {
			return NewValidationError(c, "Invalid polarity", []ValidationError{
				{Field: "polarity", Message: "Must be one of: expense, income"},
			})
		}
		filters.Polarity = &polarity
	}
	if c.QueryParam("mine") == "true" {
		userID := middleware.GetUserID(c)
		filters.CreatedBy = &userID
	}

	summary, err := h.aggregationService.Summarize(c.Request().Context(), scope, filters)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDateRange) {
			return NewValidationError(c, "Invalid date range", []ValidationError{
				{Field: "start", Message: "start and end must both be set and start must not be after end"},
			})
		}
		log.Error().Err(err).Str("scope", scope.String()).Msg("Failed to summarize charges")
		return NewInternalError(c, "Failed to summarize charges")
	}

	return c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// GetRecentCharges handles GET /api/v1/charges/recent?start=&end=
// @Summary Charges in a date range
// @Tags charges
// @Produce json
// @Security BearerAuth
// @Param start query string true "Range start (YYYY-MM-DD)"
// @Param end query string true "Range end (YYYY-MM-DD)"
// @Success 200 {array} ChargeResponse
// @Failure 400 {object} ProblemDetails
// @Router /charges/recent [get]
func (h *ChargeHandler) GetRecentCharges(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}

	start, err := time.Parse(dateLayout, c.QueryParam("start"))
	if err != nil {
		return NewValidationError(c, "Invalid start date", []ValidationError{
			{Field: "start", Message: "Must be in YYYY-MM-DD format"},
		})
	}
	end, err := time.Parse(dateLayout, c.QueryParam("end"))
	if err != nil {
		return NewValidationError(c, "Invalid end date", []ValidationError{
			{Field: "end", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	charges, err := h.aggregationService.Recent(c.Request().Context(), scope, start, end)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDateRange) {
			return NewValidationError(c, "Invalid date range", nil)
		}
		log.Error().Err(err).Str("scope", scope.String()).Msg("Failed to get recent charges")
		return NewInternalError(c, "Failed to get charges")
	}

	response := make([]ChargeResponse, len(charges))
	for i, charge := range charges {
		response[i] = toChargeResponse(charge)
	}
	return c.JSON(http.StatusOK, response)
}

// GetCharge handles GET /api/v1/charges/:id
// @Summary Get a charge
// @Tags charges
// @Produce json
// @Security BearerAuth
// @Param id path int true "Charge ID"
// @Success 200 {object} ChargeResponse
// @Failure 404 {object} ProblemDetails
// @Router /charges/{id} [get]
func (h *ChargeHandler) GetCharge(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return NewValidationError(c, "Invalid charge ID", nil)
	}

	charge, err := h.chargeService.GetCharge(c.Request().Context(), scope, id)
	if err != nil {
		if errors.Is(err, domain.ErrChargeNotFound) {
			return NewNotFoundError(c, "Charge not found")
		}
		log.Error().Err(err).Int32("charge_id", id).Msg("Failed to get charge")
		return NewInternalError(c, "Failed to get charge")
	}
	return c.JSON(http.StatusOK, toChargeResponse(charge))
}

// UpdateCharge handles PUT /api/v1/charges/:id
// @Summary Change the amount and note of a charge
// @Tags charges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Charge ID"
// @Param request body UpdateChargeRequest true "Charge"
// @Success 200 {object} ChargeResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /charges/{id} [put]
func (h *ChargeHandler) UpdateCharge(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return NewValidationError(c, "Invalid charge ID", nil)
	}

	var req UpdateChargeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	charge, err := h.chargeService.UpdateCharge(c.Request().Context(), scope, id, amount, req.Note)
	if err != nil {
		if resp := chargeError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("charge_id", id).Msg("Failed to update charge")
		return NewInternalError(c, "Failed to update charge")
	}

	log.Info().Str("scope", scope.String()).Int32("charge_id", id).Msg("Charge updated")
	return c.JSON(http.StatusOK, toChargeResponse(charge))
}

// DeleteCharge handles DELETE /api/v1/charges/:id
// @Summary Delete a charge
// @Tags charges
// @Security BearerAuth
// @Param id path int true "Charge ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /charges/{id} [delete]
func (h *ChargeHandler) DeleteCharge(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return NewValidationError(c, "Invalid charge ID", nil)
	}

	if err := h.chargeService.DeleteCharge(c.Request().Context(), scope, id); err != nil {
		if errors.Is(err, domain.ErrChargeNotFound) {
			return NewNotFoundError(c, "Charge not found")
		}
		log.Error().Err(err).Int32("charge_id", id).Msg("Failed to delete charge")
		return NewInternalError(c, "Failed to delete charge")
	}

	log.Info().Str("scope", scope.String()).Int32("charge_id", id).Msg("Charge deleted")
	return c.NoContent(http.StatusNoContent)
}

func chargeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be greater than zero"},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "note", Message: "Note must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryKey", Message: "Unknown category"},
		})
	case errors.Is(err, domain.ErrChargeNotFound):
		return NewNotFoundError(c, "Charge not found")
	}
	return nil
}

func toChargeResponse(charge *domain.ChargeRecord) ChargeResponse {
	return ChargeResponse{
		ID:          charge.ID,
		CategoryKey: charge.CategoryKey,
		Polarity:    charge.Polarity.String(),
		Amount:      charge.Amount.StringFixed(2),
		Date:        charge.OccurredOn.Format(dateLayout),
		Note:        charge.Note,
		CreatedBy:   charge.CreatedBy,
		CreatedAt:   charge.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   charge.UpdatedAt.Format(time.RFC3339),
	}
}

func toSummaryResponse(summary *domain.ChargeSummary) SummaryResponse {
	resp := SummaryResponse{
		Result: make([]ChargeResponse, len(summary.Result)),
		Items:  make([]CategoryTotalResponse, len(summary.Items)),
		Total: map[string]string{
			"income": summary.Total.Income.StringFixed(2),
			"spend":  summary.Total.Spend.StringFixed(2),
		},
	}
	for i, charge := range summary.Result {
		resp.Result[i] = toChargeResponse(charge)
	}
	for i, item := range summary.Items {
		resp.Items[i] = CategoryTotalResponse{
			CategoryKey: item.CategoryKey,
			Polarity:    item.Polarity.String(),
			Money:       item.Money.StringFixed(2),
		}
	}
	return resp
}
