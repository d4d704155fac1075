package domain

import "fmt"

// ScopeKind separates personal books from shared team books
type ScopeKind string

const (
	ScopeKindPersonal ScopeKind = "personal"
	ScopeKindTeam     ScopeKind = "team"
)

// DefaultScopeID is the owner id of the system-default categories
const DefaultScopeID int32 = 0

// Scope identifies the owner of charges, categories and category orders.
// ID is a user id for personal scopes and a team id for team scopes.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   int32     `json:"id"`
}

// PersonalScope returns the personal scope of a user
func PersonalScope(userID int32) Scope {
	return Scope{Kind: ScopeKindPersonal, ID: userID}
}

// TeamScope returns the shared scope of a team
func TeamScope(teamID int32) Scope {
	return Scope{Kind: ScopeKindTeam, ID: teamID}
}

// Defaults returns the scope holding the default categories for the same kind
func (s Scope) Defaults() Scope {
	return Scope{Kind: s.Kind, ID: DefaultScopeID}
}

// IsDefault reports whether the scope is the shared default scope
func (s Scope) IsDefault() bool {
	return s.ID == DefaultScopeID
}

// Valid reports whether the kind is known
func (s Scope) Valid() bool {
	return s.Kind == ScopeKindPersonal || s.Kind == ScopeKindTeam
}

func (s Scope) String() string {
	return fmt.Sprintf("%s:%d", s.Kind, s.ID)
}

// Polarity marks a category or charge as expense or income
type Polarity int16

const (
	PolarityExpense Polarity = 0
	PolarityIncome  Polarity = 1
)

// Valid reports whether p is expense or income
func (p Polarity) Valid() bool {
	return p == PolarityExpense || p == PolarityIncome
}

func (p Polarity) String() string {
	if p == PolarityIncome {
		return "income"
	}
	return "expense"
}

// Status is the lifecycle flag shared by charges, categories and orders.
// Rows are never hard-deleted.
type Status int16

const (
	StatusDeleted Status = 0
	StatusActive  Status = 1
)
