package service

import (
	"context"
	"errors"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// CategoryOrderService keeps the display order of categories in step with
// category creation and deletion, and applies explicit reorders.
type CategoryOrderService struct {
	categoryRepo   domain.ChargeCategoryRepository
	orderRepo      domain.CategoryOrderRepository
	eventPublisher websocket.EventPublisher
}

// NewCategoryOrderService creates a new CategoryOrderService
func NewCategoryOrderService(categoryRepo domain.ChargeCategoryRepository, orderRepo domain.CategoryOrderRepository) *CategoryOrderService {
	return &CategoryOrderService{
		categoryRepo: categoryRepo,
		orderRepo:    orderRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CategoryOrderService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CategoryOrderService) publishEvent(scope domain.Scope, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(scope, event)
	}
}

// ListOrdered returns the default and custom categories of scope and polarity
// in the user's order.
//
// When no order exists yet it is created from the defaults-then-customs list.
// Ids in the order that no longer resolve are skipped. Visible categories
// missing from the order are not returned; only the create and delete hooks
// bring the order back in line with the category set.
func (s *CategoryOrderService) ListOrdered(ctx context.Context, scope domain.Scope, polarity domain.Polarity) ([]*domain.ChargeCategory, error) {
	if err := validateOrderKey(scope, polarity); err != nil {
		return nil, err
	}

	visible, err := s.visible(ctx, scope, polarity)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByScope(ctx, scope, polarity)
	if errors.Is(err, domain.ErrCategoryOrderNotFound) {
		err = s.orderRepo.WithLock(ctx, scope, polarity, func(repo domain.CategoryOrderRepository) error {
			var lockErr error
			order, lockErr = loadOrCreate(ctx, repo, scope, polarity, visible)
			return lockErr
		})
	}
	if err != nil {
		log.Error().Err(err).Str("scope", scope.String()).Int16("polarity", int16(polarity)).Msg("Failed to load category order")
		return nil, err
	}

	return applyOrder(order.IDs, visible), nil
}

// OnCategoryCreated appends a newly persisted category to its order
func (s *CategoryOrderService) OnCategoryCreated(ctx context.Context, category *domain.ChargeCategory) error {
	return s.orderRepo.WithLock(ctx, category.Scope, category.Polarity, func(repo domain.CategoryOrderRepository) error {
		return s.appendToOrder(ctx, repo, category)
	})
}

// CreateOrdered runs create and the creation hook as one critical section of
// the (scope, polarity) order lock. Checks made inside create hold until the
// category is in its order.
//
// A category whose order write fails is soft-deleted again so it does not
// stay active outside the order.
func (s *CategoryOrderService) CreateOrdered(ctx context.Context, scope domain.Scope, polarity domain.Polarity, create func(ctx context.Context) (*domain.ChargeCategory, error)) (*domain.ChargeCategory, error) {
	var created *domain.ChargeCategory
	err := s.orderRepo.WithLock(ctx, scope, polarity, func(repo domain.CategoryOrderRepository) error {
		category, err := create(ctx)
		if err != nil {
			return err
		}
		created = category
		return s.appendToOrder(ctx, repo, category)
	})
	if err == nil {
		return created, nil
	}

	if created != nil {
		log.Error().Err(err).
			Str("scope", scope.String()).
			Int32("category_id", created.ID).
			Msg("Category not added to its order, rolling back")
		if delErr := s.categoryRepo.SoftDelete(ctx, scope.Kind, created.ID); delErr != nil {
			log.Error().Err(delErr).
				Str("scope", scope.String()).
				Int32("category_id", created.ID).
				Msg("Failed to roll back category")
			return nil, errors.Join(err, delErr)
		}
	}
	return nil, err
}

func (s *CategoryOrderService) appendToOrder(ctx context.Context, repo domain.CategoryOrderRepository, category *domain.ChargeCategory) error {
	scope, polarity := category.Scope, category.Polarity
	order, err := repo.GetByScope(ctx, scope, polarity)
	if errors.Is(err, domain.ErrCategoryOrderNotFound) {
		visible, err := s.visible(ctx, scope, polarity)
		if err != nil {
			return err
		}
		order, err = loadOrCreate(ctx, repo, scope, polarity, visible)
		if err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if order.IDs.Contains(category.ID) {
		return nil
	}
	return repo.Update(ctx, order.ID, order.IDs.Append(category.ID))
}

// OnCategoryDeleted drops a deleted category from its order. A missing order
// or id is not an error.
func (s *CategoryOrderService) OnCategoryDeleted(ctx context.Context, category *domain.ChargeCategory) error {
	scope, polarity := category.Scope, category.Polarity
	return s.orderRepo.WithLock(ctx, scope, polarity, func(repo domain.CategoryOrderRepository) error {
		order, err := repo.GetByScope(ctx, scope, polarity)
		if errors.Is(err, domain.ErrCategoryOrderNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !order.IDs.Contains(category.ID) {
			return nil
		}
		return repo.Update(ctx, order.ID, order.IDs.Remove(category.ID))
	})
}

// Reorder moves originID right behind afterID and returns the stored order
func (s *CategoryOrderService) Reorder(ctx context.Context, scope domain.Scope, polarity domain.Polarity, originID, afterID int32) (domain.Permutation, error) {
	if err := validateOrderKey(scope, polarity); err != nil {
		return nil, err
	}
	if originID <= 0 || afterID < 0 {
		return nil, domain.ErrInvalidInput
	}

	var moved domain.Permutation
	err := s.orderRepo.WithLock(ctx, scope, polarity, func(repo domain.CategoryOrderRepository) error {
		order, err := repo.GetByScope(ctx, scope, polarity)
		if err != nil {
			return err
		}
		moved, err = order.IDs.MoveAfter(originID, afterID)
		if err != nil {
			return err
		}
		return repo.Update(ctx, order.ID, moved)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("scope", scope.String()).
		Int16("polarity", int16(polarity)).
		Int32("origin_id", originID).
		Int32("after_id", afterID).
		Msg("Categories reordered")

	s.publishEvent(scope, websocket.CategoryReordered(map[string]interface{}{
		"polarity": polarity,
		"ids":      moved,
	}))

	return moved, nil
}

// visible returns the active defaults followed by the active customs of scope
func (s *CategoryOrderService) visible(ctx context.Context, scope domain.Scope, polarity domain.Polarity) ([]*domain.ChargeCategory, error) {
	defaults, err := s.categoryRepo.FindActiveByScope(ctx, scope.Defaults(), polarity)
	if err != nil {
		return nil, err
	}
	customs, err := s.categoryRepo.FindActiveByScope(ctx, scope, polarity)
	if err != nil {
		return nil, err
	}

	all := make([]*domain.ChargeCategory, 0, len(defaults)+len(customs))
	all = append(all, defaults...)
	return append(all, customs...), nil
}

// loadOrCreate must run under the order lock. It re-reads the order so a
// writer that won the race is not overwritten.
func loadOrCreate(ctx context.Context, repo domain.CategoryOrderRepository, scope domain.Scope, polarity domain.Polarity, visible []*domain.ChargeCategory) (*domain.CategoryOrder, error) {
	order, err := repo.GetByScope(ctx, scope, polarity)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, domain.ErrCategoryOrderNotFound) {
		return nil, err
	}

	ids := make(domain.Permutation, len(visible))
	for i, c := range visible {
		ids[i] = c.ID
	}
	return repo.Create(ctx, &domain.CategoryOrder{
		Scope:    scope,
		Polarity: polarity,
		IDs:      ids,
		Status:   domain.StatusActive,
	})
}

// applyOrder walks ids and keeps the categories that still resolve
func applyOrder(ids domain.Permutation, visible []*domain.ChargeCategory) []*domain.ChargeCategory {
	byID := make(map[int32]*domain.ChargeCategory, len(visible))
	for _, c := range visible {
		byID[c.ID] = c
	}

	ordered := make([]*domain.ChargeCategory, 0, len(ids))
	seen := make(map[int32]bool, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, c)
	}
	return ordered
}

func validateOrderKey(scope domain.Scope, polarity domain.Polarity) error {
	if !scope.Valid() || scope.IsDefault() {
		return domain.ErrInvalidInput
	}
	if !polarity.Valid() {
		return domain.ErrInvalidPolarity
	}
	return nil
}
