package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ChargeCategoryService handles category lifecycle. Creation and deletion run
// the category order hooks; deletion also cascades onto the charges.
type ChargeCategoryService struct {
	categoryRepo   domain.ChargeCategoryRepository
	chargeRepo     domain.ChargeRepository
	orderService   *CategoryOrderService
	iconService    *IconService
	eventPublisher websocket.EventPublisher
}

// NewChargeCategoryService creates a new ChargeCategoryService
func NewChargeCategoryService(
	categoryRepo domain.ChargeCategoryRepository,
	chargeRepo domain.ChargeRepository,
	orderService *CategoryOrderService,
	iconService *IconService,
) *ChargeCategoryService {
	return &ChargeCategoryService{
		categoryRepo: categoryRepo,
		chargeRepo:   chargeRepo,
		orderService: orderService,
		iconService:  iconService,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ChargeCategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ChargeCategoryService) publishEvent(scope domain.Scope, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(scope, event)
	}
}

// CreateCategoryInput holds the fields of a new custom category
type CreateCategoryInput struct {
	Name     string
	Icon     string
	Polarity domain.Polarity
}

// CreateCategory creates a custom category in scope and appends it to the
// scope's category order. The cap and name checks run under the order lock of
// (scope, polarity).
func (s *ChargeCategoryService) CreateCategory(ctx context.Context, scope domain.Scope, input CreateCategoryInput) (*domain.ChargeCategory, error) {
	if !scope.Valid() || scope.IsDefault() {
		return nil, domain.ErrInvalidInput
	}
	if !input.Polarity.Valid() {
		return nil, domain.ErrInvalidPolarity
	}
	name, icon, err := validateCategoryFields(input.Name, input.Icon)
	if err != nil {
		return nil, err
	}
	// Uploaded icons only come through UploadIcon
	if IsUploaded(icon) {
		return nil, domain.ErrInvalidInput
	}

	category, err := s.orderService.CreateOrdered(ctx, scope, input.Polarity, func(ctx context.Context) (*domain.ChargeCategory, error) {
		if err := s.checkNameAvailable(ctx, scope, name, 0); err != nil {
			return nil, err
		}

		count, err := s.categoryRepo.CountCustom(ctx, scope, input.Polarity)
		if err != nil {
			return nil, err
		}
		if count >= domain.MaxCustomCategories {
			return nil, domain.ErrCategoryLimitReached
		}

		return s.categoryRepo.Create(ctx, &domain.ChargeCategory{
			Scope:    scope,
			Name:     name,
			Key:      uuid.New().String(),
			Icon:     icon,
			Polarity: input.Polarity,
			Origin:   domain.CategoryOriginCustom,
			Status:   domain.StatusActive,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(scope, websocket.CategoryCreated(category))
	return category, nil
}

// GetCategory returns a custom category of scope or a default category of the same kind
func (s *ChargeCategoryService) GetCategory(ctx context.Context, scope domain.Scope, id int32) (*domain.ChargeCategory, error) {
	category, err := s.categoryRepo.GetByID(ctx, scope.Kind, id)
	if err != nil {
		return nil, err
	}
	if category.Scope != scope && category.Scope != scope.Defaults() {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

// UpdateCategory renames and re-icons a custom category of scope
func (s *ChargeCategoryService) UpdateCategory(ctx context.Context, scope domain.Scope, id int32, name, icon string) (*domain.ChargeCategory, error) {
	category, err := s.getOwnedCustom(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	name, icon, err = validateCategoryFields(name, icon)
	if err != nil {
		return nil, err
	}
	if IsUploaded(icon) && icon != category.Icon {
		return nil, domain.ErrInvalidInput
	}
	if name != category.Name {
		if err := s.checkNameAvailable(ctx, scope, name, category.ID); err != nil {
			return nil, err
		}
	}

	previousIcon := category.Icon
	updated, err := s.categoryRepo.Update(ctx, scope.Kind, id, name, icon)
	if err != nil {
		return nil, err
	}

	if IsUploaded(previousIcon) && previousIcon != icon {
		s.dropIcon(ctx, previousIcon)
	}

	s.publishEvent(scope, websocket.CategoryUpdated(updated))
	return updated, nil
}

// UploadIcon replaces the icon of a custom category with an uploaded image
func (s *ChargeCategoryService) UploadIcon(ctx context.Context, scope domain.Scope, id int32, data []byte, filename string) (*domain.ChargeCategory, error) {
	category, err := s.getOwnedCustom(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	path, err := s.iconService.Upload(ctx, scope, data, filename)
	if err != nil {
		return nil, err
	}

	previousIcon := category.Icon
	updated, err := s.categoryRepo.Update(ctx, scope.Kind, id, category.Name, path)
	if err != nil {
		s.dropIcon(ctx, path)
		return nil, err
	}

	if IsUploaded(previousIcon) {
		s.dropIcon(ctx, previousIcon)
	}

	s.publishEvent(scope, websocket.CategoryUpdated(updated))
	return updated, nil
}

// DeleteCategory soft-deletes a custom category, removes it from the category
// order and flips every active charge tagged with it to deleted.
//
// The charge cascade is not atomic with the category delete. When it fails
// part way the category stays deleted and a *domain.PartialFailureError lists
// the charges that are still active.
func (s *ChargeCategoryService) DeleteCategory(ctx context.Context, scope domain.Scope, id int32) error {
	category, err := s.getOwnedCustom(ctx, scope, id)
	if err != nil {
		return err
	}

	if err := s.categoryRepo.SoftDelete(ctx, scope.Kind, id); err != nil {
		return err
	}

	if err := s.orderService.OnCategoryDeleted(ctx, category); err != nil {
		// Reads skip ids that no longer resolve, so a stale order is harmless
		log.Warn().Err(err).
			Str("scope", scope.String()).
			Int32("category_id", id).
			Msg("Failed to remove deleted category from its order")
	}

	cascadeErr := s.cascadeDelete(ctx, category)

	s.publishEvent(scope, websocket.CategoryDeleted(map[string]interface{}{
		"id":       category.ID,
		"key":      category.Key,
		"polarity": category.Polarity,
	}))

	if cascadeErr != nil {
		log.Warn().Err(cascadeErr).
			Str("scope", scope.String()).
			Int32("category_id", id).
			Msg("Category deleted but charge cascade incomplete")
		return cascadeErr
	}
	return nil
}

func (s *ChargeCategoryService) cascadeDelete(ctx context.Context, category *domain.ChargeCategory) error {
	charges, err := s.chargeRepo.FindByCategoryKey(ctx, category.Scope, category.Key)
	if err != nil {
		return &domain.PartialFailureError{CategoryID: category.ID, Err: err}
	}

	var failed []int32
	var errs []error
	for _, charge := range charges {
		if err := s.chargeRepo.SoftDelete(ctx, category.Scope, charge.ID); err != nil {
			failed = append(failed, charge.ID)
			errs = append(errs, err)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &domain.PartialFailureError{
		CategoryID:      category.ID,
		FailedRecordIDs: failed,
		Err:             errors.Join(errs...),
	}
}

// getOwnedCustom loads a category that scope may modify. Defaults are read-only.
func (s *ChargeCategoryService) getOwnedCustom(ctx context.Context, scope domain.Scope, id int32) (*domain.ChargeCategory, error) {
	category, err := s.GetCategory(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if category.IsDefault() {
		return nil, domain.ErrDefaultCategoryReadOnly
	}
	return category, nil
}

// checkNameAvailable rejects names used by another active category of scope
// or by a default category
func (s *ChargeCategoryService) checkNameAvailable(ctx context.Context, scope domain.Scope, name string, selfID int32) error {
	for _, owner := range []domain.Scope{scope, scope.Defaults()} {
		existing, err := s.categoryRepo.GetByName(ctx, owner, name)
		if errors.Is(err, domain.ErrCategoryNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if existing.ID != selfID {
			return domain.ErrCategoryAlreadyExists
		}
	}
	return nil
}

func (s *ChargeCategoryService) dropIcon(ctx context.Context, icon string) {
	if err := s.iconService.Delete(ctx, icon); err != nil {
		log.Warn().Err(err).Str("icon", icon).Msg("Failed to delete icon")
	}
}

func validateCategoryFields(name, icon string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", domain.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > domain.MaxCategoryNameLength {
		return "", "", domain.ErrNameTooLong
	}
	icon = strings.TrimSpace(icon)
	if icon == "" {
		return "", "", domain.ErrIconRequired
	}
	return name, icon, nil
}
