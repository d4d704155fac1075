package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryOrderColumns = `id, owner_kind, owner_id, polarity, ids, status, created_at, updated_at`

// CategoryOrderRepository implements domain.CategoryOrderRepository using PostgreSQL.
// Orders are serialized per (scope, polarity) with a transaction-scoped advisory lock.
type CategoryOrderRepository struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
}

// NewCategoryOrderRepository creates a new CategoryOrderRepository
func NewCategoryOrderRepository(pool *pgxpool.Pool) *CategoryOrderRepository {
	return &CategoryOrderRepository{pool: pool, db: pool}
}

// GetByScope retrieves the active order of scope and polarity
func (r *CategoryOrderRepository) GetByScope(ctx context.Context, scope domain.Scope, polarity domain.Polarity) (*domain.CategoryOrder, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+categoryOrderColumns+`
		FROM category_orders
		WHERE owner_kind = $1 AND owner_id = $2 AND polarity = $3 AND status = $4`,
		scope.Kind, scope.ID, polarity, domain.StatusActive,
	)
	return scanCategoryOrder(row)
}

// Create inserts the order of a (scope, polarity) pair
func (r *CategoryOrderRepository) Create(ctx context.Context, order *domain.CategoryOrder) (*domain.CategoryOrder, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO category_orders (owner_kind, owner_id, polarity, ids, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryOrderColumns,
		order.Scope.Kind, order.Scope.ID, order.Polarity, order.IDs.String(), domain.StatusActive,
	)
	created, err := scanCategoryOrder(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// Update replaces the permutation of the order with id
func (r *CategoryOrderRepository) Update(ctx context.Context, id int32, ids domain.Permutation) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE category_orders
		SET ids = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`,
		id, ids.String(), domain.StatusActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryOrderNotFound
	}
	return nil
}

// WithLock runs fn in a transaction holding the advisory lock of the
// (scope, polarity) key. The lock is released on commit or rollback.
func (r *CategoryOrderRepository) WithLock(ctx context.Context, scope domain.Scope, polarity domain.Polarity, fn func(repo domain.CategoryOrderRepository) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, orderLockKey(scope, polarity)); err != nil {
		return fmt.Errorf("acquire category order lock: %w", err)
	}

	if err := fn(&CategoryOrderRepository{pool: r.pool, db: tx, inTx: true}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func orderLockKey(scope domain.Scope, polarity domain.Polarity) string {
	return fmt.Sprintf("category_order:%s:%d", scope, polarity)
}

func scanCategoryOrder(row pgx.Row) (*domain.CategoryOrder, error) {
	var o domain.CategoryOrder
	var ids string
	err := row.Scan(&o.ID, &o.Scope.Kind, &o.Scope.ID, &o.Polarity, &ids, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryOrderNotFound
		}
		return nil, err
	}
	o.IDs = domain.ParsePermutation(ids)
	return &o, nil
}
