package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ChargeRecord is a single income or expense entry
type ChargeRecord struct {
	ID          int32           `json:"id"`
	Scope       Scope           `json:"scope"`
	CreatedBy   int32           `json:"createdBy"`
	CategoryKey string          `json:"categoryKey"`
	Polarity    Polarity        `json:"polarity"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredOn  time.Time       `json:"occurredOn"`
	Status      Status          `json:"status"`
	Note        string          `json:"note"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ChargeFilters narrows a record lookup. A complete range wins over Date.
type ChargeFilters struct {
	Date        *time.Time
	RangeStart  *time.Time
	RangeEnd    *time.Time
	CategoryKey *string
	Polarity    *Polarity
	CreatedBy   *int32
}

// HasRange reports whether both ends of the range are set
func (f ChargeFilters) HasRange() bool {
	return f.RangeStart != nil && f.RangeEnd != nil
}

// ChargeRepository is the charge store. Every lookup only sees active records.
type ChargeRepository interface {
	Create(ctx context.Context, charge *ChargeRecord) (*ChargeRecord, error)
	GetByID(ctx context.Context, scope Scope, id int32) (*ChargeRecord, error)
	FindByOwnerAndDate(ctx context.Context, scope Scope, date time.Time) ([]*ChargeRecord, error)
	FindByOwnerAndDateRange(ctx context.Context, scope Scope, start, end time.Time) ([]*ChargeRecord, error)
	FindByOwnerAndFilters(ctx context.Context, scope Scope, filters ChargeFilters) ([]*ChargeRecord, error)
	FindByCategoryKey(ctx context.Context, scope Scope, categoryKey string) ([]*ChargeRecord, error)
	UpdateAmount(ctx context.Context, scope Scope, id int32, amount decimal.Decimal, note string) (*ChargeRecord, error)
	SoftDelete(ctx context.Context, scope Scope, id int32) error
}

// DateOnly truncates t to midnight in its own location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
