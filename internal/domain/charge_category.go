package domain

import (
	"context"
	"time"
)

// CategoryOrigin tells system-provided categories apart from user-created ones
type CategoryOrigin string

const (
	CategoryOriginDefault CategoryOrigin = "default"
	CategoryOriginCustom  CategoryOrigin = "custom"
)

// ChargeCategory groups charges. Key is the stable identifier stored on charge
// records, so renaming a category never detaches its history.
type ChargeCategory struct {
	ID        int32          `json:"id"`
	Scope     Scope          `json:"scope"`
	Name      string         `json:"name"`
	Key       string         `json:"key"`
	Icon      string         `json:"icon"`
	Polarity  Polarity       `json:"polarity"`
	Origin    CategoryOrigin `json:"origin"`
	Status    Status         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// IsDefault reports whether the category is a system default
func (c *ChargeCategory) IsDefault() bool {
	return c.Origin == CategoryOriginDefault
}

// ChargeCategoryRepository is the category store. Lookups only return active categories.
type ChargeCategoryRepository interface {
	Create(ctx context.Context, category *ChargeCategory) (*ChargeCategory, error)
	GetByID(ctx context.Context, kind ScopeKind, id int32) (*ChargeCategory, error)
	GetByName(ctx context.Context, scope Scope, name string) (*ChargeCategory, error)
	GetByKey(ctx context.Context, scope Scope, key string) (*ChargeCategory, error)
	FindActiveByScope(ctx context.Context, scope Scope, polarity Polarity) ([]*ChargeCategory, error)
	CountCustom(ctx context.Context, scope Scope, polarity Polarity) (int, error)
	Update(ctx context.Context, kind ScopeKind, id int32, name, icon string) (*ChargeCategory, error)
	SoftDelete(ctx context.Context, kind ScopeKind, id int32) error
}
