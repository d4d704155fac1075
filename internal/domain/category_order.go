package domain

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// CategoryOrder is the persisted display order of one (scope, polarity) pair
type CategoryOrder struct {
	ID        int32       `json:"id"`
	Scope     Scope       `json:"scope"`
	Polarity  Polarity    `json:"polarity"`
	IDs       Permutation `json:"ids"`
	Status    Status      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// CategoryOrderRepository is the order store.
//
// WithLock runs fn while holding the write lock of the (scope, polarity) key.
// The repository passed to fn must be used for every read and write inside
// the critical section.
type CategoryOrderRepository interface {
	GetByScope(ctx context.Context, scope Scope, polarity Polarity) (*CategoryOrder, error)
	Create(ctx context.Context, order *CategoryOrder) (*CategoryOrder, error)
	Update(ctx context.Context, id int32, ids Permutation) error
	WithLock(ctx context.Context, scope Scope, polarity Polarity, fn func(repo CategoryOrderRepository) error) error
}

// Permutation is an ordered list of category ids. It is stored comma-joined.
type Permutation []int32

// ParsePermutation decodes the stored comma-joined form. Tokens that are not
// integers are dropped, the same way unresolvable ids are dropped on read.
func ParsePermutation(s string) Permutation {
	parts := strings.Split(s, ",")
	ids := make(Permutation, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, int32(id))
	}
	return ids
}

// String encodes the permutation in its stored comma-joined form
func (p Permutation) String() string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ",")
}

// IndexOf returns the first position of id, or -1
func (p Permutation) IndexOf(id int32) int {
	for i, v := range p {
		if v == id {
			return i
		}
	}
	return -1
}

// Contains reports whether id is present
func (p Permutation) Contains(id int32) bool {
	return p.IndexOf(id) >= 0
}

// Append returns p with id added at the end unless it is already present
func (p Permutation) Append(id int32) Permutation {
	if p.Contains(id) {
		return p
	}
	out := make(Permutation, len(p), len(p)+1)
	copy(out, p)
	return append(out, id)
}

// Remove returns p without any occurrence of id
func (p Permutation) Remove(id int32) Permutation {
	out := make(Permutation, 0, len(p))
	for _, v := range p {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// MoveAfter moves originID right behind afterID.
//
// The origin slot is tombstoned in place, afterID is looked up in the
// tombstoned list and origin is inserted behind it, then the tombstone is
// dropped. A missing afterID inserts at the front, and so does a self-move,
// since the tombstoned origin can no longer match.
func (p Permutation) MoveAfter(originID, afterID int32) (Permutation, error) {
	originIdx := p.IndexOf(originID)
	if originIdx < 0 {
		return nil, ErrCategoryNotInOrder
	}

	type slot struct {
		id        int32
		tombstone bool
	}

	slots := make([]slot, len(p))
	for i, id := range p {
		slots[i] = slot{id: id}
	}
	slots[originIdx].tombstone = true

	afterIdx := -1
	for i, s := range slots {
		if !s.tombstone && s.id == afterID {
			afterIdx = i
			break
		}
	}

	insertAt := afterIdx + 1
	moved := make([]slot, 0, len(slots)+1)
	moved = append(moved, slots[:insertAt]...)
	moved = append(moved, slot{id: originID})
	moved = append(moved, slots[insertAt:]...)

	out := make(Permutation, 0, len(p))
	for _, s := range moved {
		if s.tombstone {
			continue
		}
		out = append(out, s.id)
	}
	return out, nil
}
