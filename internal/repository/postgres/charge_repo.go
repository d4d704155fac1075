package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const chargeColumns = `id, owner_kind, owner_id, created_by, category_key, polarity, amount, occurred_on, status, note, created_at, updated_at`

// ChargeRepository implements domain.ChargeRepository using PostgreSQL
type ChargeRepository struct {
	pool *pgxpool.Pool
}

// NewChargeRepository creates a new ChargeRepository
func NewChargeRepository(pool *pgxpool.Pool) *ChargeRepository {
	return &ChargeRepository{pool: pool}
}

// Create inserts a new charge
func (r *ChargeRepository) Create(ctx context.Context, charge *domain.ChargeRecord) (*domain.ChargeRecord, error) {
	amount, err := decimalToPgNumeric(charge.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO charges (owner_kind, owner_id, created_by, category_key, polarity, amount, occurred_on, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+chargeColumns,
		charge.Scope.Kind, charge.Scope.ID, charge.CreatedBy, charge.CategoryKey, charge.Polarity,
		amount, pgDate(charge.OccurredOn), domain.StatusActive, charge.Note,
	)
	return scanCharge(row)
}

// GetByID retrieves an active charge of scope
func (r *ChargeRepository) GetByID(ctx context.Context, scope domain.Scope, id int32) (*domain.ChargeRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+chargeColumns+`
		FROM charges
		WHERE owner_kind = $1 AND owner_id = $2 AND id = $3 AND status = $4`,
		scope.Kind, scope.ID, id, domain.StatusActive,
	)
	return scanCharge(row)
}

// FindByOwnerAndDate returns the active charges of scope on date
func (r *ChargeRepository) FindByOwnerAndDate(ctx context.Context, scope domain.Scope, date time.Time) ([]*domain.ChargeRecord, error) {
	return r.FindByOwnerAndFilters(ctx, scope, domain.ChargeFilters{Date: &date})
}

// FindByOwnerAndDateRange returns the active charges of scope within [start, end]
func (r *ChargeRepository) FindByOwnerAndDateRange(ctx context.Context, scope domain.Scope, start, end time.Time) ([]*domain.ChargeRecord, error) {
	return r.FindByOwnerAndFilters(ctx, scope, domain.ChargeFilters{RangeStart: &start, RangeEnd: &end})
}

// FindByOwnerAndFilters returns the active charges of scope matching filters,
// oldest first
func (r *ChargeRepository) FindByOwnerAndFilters(ctx context.Context, scope domain.Scope, filters domain.ChargeFilters) ([]*domain.ChargeRecord, error) {
	where, args := chargeFilterClause(scope, filters)
	rows, err := r.pool.Query(ctx, `
		SELECT `+chargeColumns+`
		FROM charges
		WHERE `+where+`
		ORDER BY occurred_on, id`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	return collectCharges(rows)
}

// FindByCategoryKey returns the active charges of scope tagged with categoryKey
func (r *ChargeRepository) FindByCategoryKey(ctx context.Context, scope domain.Scope, categoryKey string) ([]*domain.ChargeRecord, error) {
	return r.FindByOwnerAndFilters(ctx, scope, domain.ChargeFilters{CategoryKey: &categoryKey})
}

// UpdateAmount changes the amount and note of an active charge
func (r *ChargeRepository) UpdateAmount(ctx context.Context, scope domain.Scope, id int32, amount decimal.Decimal, note string) (*domain.ChargeRecord, error) {
	num, err := decimalToPgNumeric(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE charges
		SET amount = $4, note = $5, updated_at = NOW()
		WHERE owner_kind = $1 AND owner_id = $2 AND id = $3 AND status = $6
		RETURNING `+chargeColumns,
		scope.Kind, scope.ID, id, num, note, domain.StatusActive,
	)
	return scanCharge(row)
}

// SoftDelete flips an active charge to deleted
func (r *ChargeRepository) SoftDelete(ctx context.Context, scope domain.Scope, id int32) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE charges
		SET status = $4, updated_at = NOW()
		WHERE owner_kind = $1 AND owner_id = $2 AND id = $3 AND status = $5`,
		scope.Kind, scope.ID, id, domain.StatusDeleted, domain.StatusActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChargeNotFound
	}
	return nil
}

// chargeFilterClause builds the WHERE clause of a filtered lookup. A complete
// range wins over an exact date.
func chargeFilterClause(scope domain.Scope, filters domain.ChargeFilters) (string, []any) {
	conds := []string{"owner_kind = $1", "owner_id = $2", "status = $3"}
	args := []any{scope.Kind, scope.ID, domain.StatusActive}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	switch {
	case filters.HasRange():
		add("occurred_on >= $%d", pgDate(*filters.RangeStart))
		add("occurred_on <= $%d", pgDate(*filters.RangeEnd))
	case filters.Date != nil:
		add("occurred_on = $%d", pgDate(*filters.Date))
	}
	if filters.CategoryKey != nil {
		add("category_key = $%d", *filters.CategoryKey)
	}
	if filters.Polarity != nil {
		add("polarity = $%d", *filters.Polarity)
	}
	if filters.CreatedBy != nil {
		add("created_by = $%d", *filters.CreatedBy)
	}

	return strings.Join(conds, " AND "), args
}

func pgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.DateOnly(t), Valid: true}
}

func scanCharge(row pgx.Row) (*domain.ChargeRecord, error) {
	var c domain.ChargeRecord
	var amount pgtype.Numeric
	var occurredOn pgtype.Date
	err := row.Scan(
		&c.ID, &c.Scope.Kind, &c.Scope.ID, &c.CreatedBy, &c.CategoryKey, &c.Polarity,
		&amount, &occurredOn, &c.Status, &c.Note, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChargeNotFound
		}
		return nil, err
	}
	c.Amount = pgNumericToDecimal(amount)
	c.OccurredOn = occurredOn.Time
	return &c, nil
}

func collectCharges(rows pgx.Rows) ([]*domain.ChargeRecord, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.ChargeRecord, error) {
		return scanCharge(row)
	})
}
