package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `id, owner_kind, owner_id, name, key, icon, polarity, origin, status, created_at, updated_at`

// ChargeCategoryRepository implements domain.ChargeCategoryRepository using PostgreSQL
type ChargeCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewChargeCategoryRepository creates a new ChargeCategoryRepository
func NewChargeCategoryRepository(pool *pgxpool.Pool) *ChargeCategoryRepository {
	return &ChargeCategoryRepository{pool: pool}
}

// Create inserts a new category
func (r *ChargeCategoryRepository) Create(ctx context.Context, category *domain.ChargeCategory) (*domain.ChargeCategory, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO charge_categories (owner_kind, owner_id, name, key, icon, polarity, origin, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+categoryColumns,
		category.Scope.Kind, category.Scope.ID, category.Name, category.Key, category.Icon,
		category.Polarity, category.Origin, domain.StatusActive,
	)
	created, err := scanCategory(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCategoryAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an active category of the given scope kind
func (r *ChargeCategoryRepository) GetByID(ctx context.Context, kind domain.ScopeKind, id int32) (*domain.ChargeCategory, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+categoryColumns+`
		FROM charge_categories
		WHERE owner_kind = $1 AND id = $2 AND status = $3`,
		kind, id, domain.StatusActive,
	)
	return scanCategory(row)
}

// GetByName retrieves an active category of scope by exact name
func (r *ChargeCategoryRepository) GetByName(ctx context.Context, scope domain.Scope, name string) (*domain.ChargeCategory, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+categoryColumns+`
		FROM charge_categories
		WHERE owner_kind = $1 AND owner_id = $2 AND name = $3 AND status = $4`,
		scope.Kind, scope.ID, name, domain.StatusActive,
	)
	return scanCategory(row)
}

// GetByKey retrieves an active category of scope by key
func (r *ChargeCategoryRepository) GetByKey(ctx context.Context, scope domain.Scope, key string) (*domain.ChargeCategory, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+categoryColumns+`
		FROM charge_categories
		WHERE owner_kind = $1 AND owner_id = $2 AND key = $3 AND status = $4`,
		scope.Kind, scope.ID, key, domain.StatusActive,
	)
	return scanCategory(row)
}

// FindActiveByScope returns the active categories of scope and polarity ordered by id
func (r *ChargeCategoryRepository) FindActiveByScope(ctx context.Context, scope domain.Scope, polarity domain.Polarity) ([]*domain.ChargeCategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+categoryColumns+`
		FROM charge_categories
		WHERE owner_kind = $1 AND owner_id = $2 AND polarity = $3 AND status = $4
		ORDER BY id`,
		scope.Kind, scope.ID, polarity, domain.StatusActive,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.ChargeCategory, error) {
		return scanCategory(row)
	})
}

// CountCustom counts the active custom categories of scope and polarity
func (r *ChargeCategoryRepository) CountCustom(ctx context.Context, scope domain.Scope, polarity domain.Polarity) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM charge_categories
		WHERE owner_kind = $1 AND owner_id = $2 AND polarity = $3 AND origin = $4 AND status = $5`,
		scope.Kind, scope.ID, polarity, domain.CategoryOriginCustom, domain.StatusActive,
	).Scan(&count)
	return count, err
}

// Update renames and re-icons an active category
func (r *ChargeCategoryRepository) Update(ctx context.Context, kind domain.ScopeKind, id int32, name, icon string) (*domain.ChargeCategory, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE charge_categories
		SET name = $3, icon = $4, updated_at = NOW()
		WHERE owner_kind = $1 AND id = $2 AND status = $5
		RETURNING `+categoryColumns,
		kind, id, name, icon, domain.StatusActive,
	)
	updated, err := scanCategory(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCategoryAlreadyExists
		}
		return nil, err
	}
	return updated, nil
}

// SoftDelete flips an active category to deleted
func (r *ChargeCategoryRepository) SoftDelete(ctx context.Context, kind domain.ScopeKind, id int32) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE charge_categories
		SET status = $3, updated_at = NOW()
		WHERE owner_kind = $1 AND id = $2 AND status = $4`,
		kind, id, domain.StatusDeleted, domain.StatusActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*domain.ChargeCategory, error) {
	var c domain.ChargeCategory
	err := row.Scan(
		&c.ID, &c.Scope.Kind, &c.Scope.ID, &c.Name, &c.Key, &c.Icon,
		&c.Polarity, &c.Origin, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}
