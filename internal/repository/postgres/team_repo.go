package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TeamRepository implements domain.TeamRepository using PostgreSQL
type TeamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(pool *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

// GetByID retrieves an active team
func (r *TeamRepository) GetByID(ctx context.Context, id int32) (*domain.Team, error) {
	var t domain.Team
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, owner_id, status, created_at, updated_at
		FROM teams
		WHERE id = $1 AND status = $2`,
		id, domain.StatusActive,
	).Scan(&t.ID, &t.Name, &t.OwnerID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

// IsMember reports whether userID belongs to teamID
func (r *TeamRepository) IsMember(ctx context.Context, teamID, userID int32) (bool, error) {
	var member bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2
		)`,
		teamID, userID,
	).Scan(&member)
	return member, err
}
