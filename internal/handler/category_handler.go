package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CategoryHandler handles charge category HTTP requests
type CategoryHandler struct {
	scopes          ScopeResolver
	categoryService *service.ChargeCategoryService
	orderService    *service.CategoryOrderService
	iconService     *service.IconService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(
	scopes ScopeResolver,
	categoryService *service.ChargeCategoryService,
	orderService *service.CategoryOrderService,
	iconService *service.IconService,
) *CategoryHandler {
	return &CategoryHandler{
		scopes:          scopes,
		categoryService: categoryService,
		orderService:    orderService,
		iconService:     iconService,
	}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Polarity string `json:"polarity"`
}

// UpdateCategoryRequest represents the update category request body
type UpdateCategoryRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// ReorderCategoriesRequest moves OriginID right behind AfterID. AfterID 0
// moves it to the front.
type ReorderCategoriesRequest struct {
	Polarity string `json:"polarity"`
	OriginID int32  `json:"originId"`
	AfterID  int32  `json:"afterId"`
}

// ReorderCategoriesResponse carries the stored order after a move
type ReorderCategoriesResponse struct {
	Polarity string  `json:"polarity"`
	IDs      []int32 `json:"ids"`
}

// CategoryResponse represents a charge category in API responses
type CategoryResponse struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	Key       string `json:"key"`
	Icon      string `json:"icon"`
	IconURL   string `json:"iconUrl"`
	Polarity  string `json:"polarity"`
	IsDefault bool   `json:"isDefault"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ListCategories handles GET /api/v1/categories?polarity=
// @Summary List categories in display order
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param polarity query string true "expense or income"
// @Param teamId query int false "Team book"
// @Success 200 {array} CategoryResponse
// @Failure 400 {object} ProblemDetails
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}

	polarity, ok := parsePolarity(c.QueryParam("polarity"))
	if !ok {
		return NewValidationError(c, "Invalid polarity", []ValidationError{
			{Field: "polarity", Message: "Must be one of: expense, income"},
		})
	}

	categories, err := h.orderService.ListOrdered(c.Request().Context(), scope, polarity)
	if err != nil {
		log.Error().Err(err).Str("scope", scope.String()).Msg("Failed to list categories")
		return NewInternalError(c, "Failed to list categories")
	}

	response := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		response[i] = h.toCategoryResponse(c, category)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateCategory handles POST /api/v1/categories
// @Summary Create a custom category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "Category"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	polarity, ok := parsePolarity(req.Polarity)
	if !ok {
		return NewValidationError(c, "Invalid polarity", []ValidationError{
			{Field: "polarity", Message: "Must be one of: expense, income"},
		})
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), scope, service.CreateCategoryInput{
		Name:     req.Name,
		Icon:     req.Icon,
		Polarity: polarity,
	})
	if err != nil {
		if errors.Is(err, domain.ErrCategoryLimitReached) {
			return NewConflictError(c, "Custom category limit reached")
		}
		if resp := categoryError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("scope", scope.String()).Msg("Failed to create category")
		return NewInternalError(c, "Failed to create category")
	}

	log.Info().Str("scope", scope.String()).Int32("category_id", category.ID).Str("name", category.Name).Msg("Category created")

	return c.JSON(http.StatusCreated, h.toCategoryResponse(c, category))
}

// GetCategory handles GET /api/v1/categories/:id
// @Summary Get a category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} CategoryResponse
// @Failure 404 {object} ProblemDetails
// @Router /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	category, err := h.categoryService.GetCategory(c.Request().Context(), scope, id)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		log.Error().Err(err).Int32("category_id", id).Msg("Failed to get category")
		return NewInternalError(c, "Failed to get category")
	}
	return c.JSON(http.StatusOK, h.toCategoryResponse(c, category))
}

// UpdateCategory handles PUT /api/v1/categories/:id
// @Summary Rename or re-icon a custom category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param request body UpdateCategoryRequest true "Category"
// @Success 200 {object} CategoryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	var req UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), scope, id, req.Name, req.Icon)
	if err != nil {
		if resp := categoryError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("category_id", id).Msg("Failed to update category")
		return NewInternalError(c, "Failed to update category")
	}

	log.Info().Str("scope", scope.String()).Int32("category_id", id).Msg("Category updated")
	return c.JSON(http.StatusOK, h.toCategoryResponse(c, category))
}

// UploadIcon handles PUT /api/v1/categories/:id/icon (multipart, field "file")
// @Summary Upload a category icon
// @Tags categories
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param file formData file true "PNG or JPEG image"
// @Success 200 {object} CategoryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /categories/{id}/icon [put]
func (h *CategoryHandler) UploadIcon(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return NewValidationError(c, "Invalid category ID", nil)
	}
	if !h.iconService.IsEnabled() {
		return NewServiceUnavailableError(c, "Icon uploads are disabled (storage not configured)")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}
	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, service.MaxIconSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	category, err := h.categoryService.UploadIcon(c.Request().Context(), scope, id, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIconTooLarge),
			errors.Is(err, service.ErrInvalidIconFormat),
			errors.Is(err, service.ErrIconTooSmall),
			errors.Is(err, service.ErrInvalidIconData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: err.Error()},
			})
		case errors.Is(err, service.ErrIconStorageNotConfigured):
			return NewServiceUnavailableError(c, "Icon uploads are disabled (storage not configured)")
		}
		if resp := categoryError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("category_id", id).Msg("Failed to upload category icon")
		return NewInternalError(c, "Failed to upload icon")
	}

	log.Info().Str("scope", scope.String()).Int32("category_id", id).Str("icon", category.Icon).Msg("Category icon uploaded")
	return c.JSON(http.StatusOK, h.toCategoryResponse(c, category))
}

// DeleteCategory handles DELETE /api/v1/categories/:id
// @Summary Delete a custom category and its charges
// @Tags categories
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 204
// @Success 207 {object} PartialFailureDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	err = h.categoryService.DeleteCategory(c.Request().Context(), scope, id)
	if err != nil {
		var partial *domain.PartialFailureError
		if errors.As(err, &partial) {
			return NewPartialFailure(c, "Category deleted but some charges could not be removed", partial.FailedRecordIDs)
		}
		if resp := categoryError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("category_id", id).Msg("Failed to delete category")
		return NewInternalError(c, "Failed to delete category")
	}

	log.Info().Str("scope", scope.String()).Int32("category_id", id).Msg("Category deleted")
	return c.NoContent(http.StatusNoContent)
}

// ReorderCategories handles POST /api/v1/categories/order
// @Summary Move a category behind another one
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReorderCategoriesRequest true "Move"
// @Success 200 {object} ReorderCategoriesResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /categories/order [post]
func (h *CategoryHandler) ReorderCategories(c echo.Context) error {
	scope, ok, err := resolveScope(c, h.scopes)
	if !ok {
		return err
	}

	var req ReorderCategoriesRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	polarity, ok := parsePolarity(req.Polarity)
	if !ok {
		return NewValidationError(c, "Invalid polarity", []ValidationError{
			{Field: "polarity", Message: "Must be one of: expense, income"},
		})
	}

	ids, err := h.orderService.Reorder(c.Request().Context(), scope, polarity, req.OriginID, req.AfterID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCategoryOrderNotFound):
			return NewNotFoundError(c, "Category order not found")
		case errors.Is(err, domain.ErrCategoryNotInOrder):
			return NewValidationError(c, "Category is not part of the order", []ValidationError{
				{Field: "originId", Message: "Both categories must be in the order"},
			})
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "originId", Message: "Must be a positive category ID"},
			})
		}
		log.Error().Err(err).Str("scope", scope.String()).Msg("Failed to reorder categories")
		return NewInternalError(c, "Failed to reorder categories")
	}

	return c.JSON(http.StatusOK, ReorderCategoriesResponse{
		Polarity: polarity.String(),
		IDs:      ids,
	})
}

// categoryError maps the category errors shared by create, update and delete.
// It returns nil for errors it does not know.
func categoryError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Category name is required", []ValidationError{
			{Field: "name", Message: "Name cannot be empty"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 50 characters or less"},
		})
	case errors.Is(err, domain.ErrIconRequired):
		return NewValidationError(c, "Category icon is required", []ValidationError{
			{Field: "icon", Message: "Icon cannot be empty"},
		})
	case errors.Is(err, domain.ErrInvalidPolarity):
		return NewValidationError(c, "Invalid polarity", nil)
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, "Invalid request", nil)
	case errors.Is(err, domain.ErrCategoryAlreadyExists):
		return NewConflictError(c, "A category with this name already exists")
	case errors.Is(err, domain.ErrDefaultCategoryReadOnly):
		return NewForbiddenError(c, "Default categories cannot be modified")
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewNotFoundError(c, "Category not found")
	}
	return nil
}

func (h *CategoryHandler) toCategoryResponse(c echo.Context, category *domain.ChargeCategory) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		Key:       category.Key,
		Icon:      category.Icon,
		IconURL:   h.iconService.URL(c.Request().Context(), category.Icon),
		Polarity:  category.Polarity.String(),
		IsDefault: category.IsDefault(),
		CreatedAt: category.CreatedAt.Format(time.RFC3339),
		UpdatedAt: category.UpdatedAt.Format(time.RFC3339),
	}
}
