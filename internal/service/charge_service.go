package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ChargeService handles charge business logic
type ChargeService struct {
	chargeRepo     domain.ChargeRepository
	categoryRepo   domain.ChargeCategoryRepository
	eventPublisher websocket.EventPublisher

	// now is replaced in tests
	now func() time.Time
}

// NewChargeService creates a new ChargeService
func NewChargeService(chargeRepo domain.ChargeRepository, categoryRepo domain.ChargeCategoryRepository) *ChargeService {
	return &ChargeService{
		chargeRepo:   chargeRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ChargeService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ChargeService) publishEvent(scope domain.Scope, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(scope, event)
	}
}

// CreateChargeInput holds the fields of a new charge
type CreateChargeInput struct {
	CategoryKey string
	Amount      decimal.Decimal
	OccurredOn  *time.Time
	Note        string
}

// CreateCharge records a charge in scope. The polarity comes from the category,
// which must be an active custom category of scope or a default.
func (s *ChargeService) CreateCharge(ctx context.Context, scope domain.Scope, userID int32, input CreateChargeInput) (*domain.ChargeRecord, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if utf8.RuneCountInString(input.Note) > domain.MaxChargeNoteLength {
		return nil, domain.ErrInvalidInput
	}

	category, err := s.resolveCategory(ctx, scope, input.CategoryKey)
	if err != nil {
		return nil, err
	}

	occurredOn := domain.DateOnly(s.now().UTC())
	if input.OccurredOn != nil {
		occurredOn = domain.DateOnly(*input.OccurredOn)
	}

	charge, err := s.chargeRepo.Create(ctx, &domain.ChargeRecord{
		Scope:       scope,
		CreatedBy:   userID,
		CategoryKey: category.Key,
		Polarity:    category.Polarity,
		Amount:      input.Amount,
		OccurredOn:  occurredOn,
		Status:      domain.StatusActive,
		Note:        input.Note,
	})
	if err != nil {
		log.Error().Err(err).Str("scope", scope.String()).Msg("Failed to create charge")
		return nil, err
	}

	s.publishEvent(scope, websocket.ChargeCreated(charge))
	return charge, nil
}

// GetCharge retrieves an active charge of scope
func (s *ChargeService) GetCharge(ctx context.Context, scope domain.Scope, id int32) (*domain.ChargeRecord, error) {
	return s.chargeRepo.GetByID(ctx, scope, id)
}

// UpdateCharge changes the amount and note of a charge. Nothing else is mutable.
func (s *ChargeService) UpdateCharge(ctx context.Context, scope domain.Scope, id int32, amount decimal.Decimal, note string) (*domain.ChargeRecord, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if utf8.RuneCountInString(note) > domain.MaxChargeNoteLength {
		return nil, domain.ErrInvalidInput
	}

	charge, err := s.chargeRepo.UpdateAmount(ctx, scope, id, amount, note)
	if err != nil {
		return nil, err
	}

	s.publishEvent(scope, websocket.ChargeUpdated(charge))
	return charge, nil
}

// DeleteCharge soft-deletes a charge
func (s *ChargeService) DeleteCharge(ctx context.Context, scope domain.Scope, id int32) error {
	if err := s.chargeRepo.SoftDelete(ctx, scope, id); err != nil {
		return err
	}

	s.publishEvent(scope, websocket.ChargeDeleted(map[string]interface{}{"id": id}))
	return nil
}

func (s *ChargeService) resolveCategory(ctx context.Context, scope domain.Scope, key string) (*domain.ChargeCategory, error) {
	if key == "" {
		return nil, domain.ErrCategoryNotFound
	}
	for _, owner := range []domain.Scope{scope, scope.Defaults()} {
		category, err := s.categoryRepo.GetByKey(ctx, owner, key)
		if err == nil {
			return category, nil
		}
		if !errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, err
		}
	}
	return nil, domain.ErrCategoryNotFound
}
