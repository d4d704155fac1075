package domain

import (
	"context"
	"time"
)

// User represents a user in the system
type User struct {
	ID        int32     `json:"id"`
	Auth0ID   string    `json:"auth0Id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*User, error)
	GetByAuth0ID(ctx context.Context, auth0ID string) (*User, error)
	CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name *string) (*User, error)
}

// Team is a shared book whose members record charges together
type Team struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int32     `json:"ownerId"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TeamRepository exposes the membership checks needed to act on a team scope
type TeamRepository interface {
	GetByID(ctx context.Context, id int32) (*Team, error)
	IsMember(ctx context.Context, teamID, userID int32) (bool, error)
}
