package cart

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound        = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrVersionConflict = errors.New("cart was modified concurrently")
)

// Repository stores at most one cart per owner.
//
// Save writes c only if the stored version still equals c.Version (0 means
// "no cart yet") and returns the cart with its new version. A stale version
// yields ErrVersionConflict. DeleteIfVersion removes the cart only if it is
// still at version; it returns ErrNotFound when there is no cart and
// ErrVersionConflict when the cart moved on.
type Repository interface {
	Get(ctx context.Context, ownerID int) (Cart, error)
	Save(ctx context.Context, c Cart) (Cart, error)
	Delete(ctx context.Context, ownerID int) error
	DeleteIfVersion(ctx context.Context, ownerID int, version int64) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.Mutex
	carts map[int]Cart
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[int]Cart)}
}

func (r *InMemoryRepository) Get(_ context.Context, ownerID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[ownerID]
	if !ok {
		return Cart{}, ErrNotFound
	}
	return c.clone(), nil
}

func (r *InMemoryRepository) Save(_ context.Context, c Cart) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.carts[c.OwnerID]
	switch {
	case !ok && c.Version != 0, ok && existing.Version != c.Version:
		return Cart{}, ErrVersionConflict
	}

	now := time.Now().UTC()
	if !ok {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	c.Version++
	r.carts[c.OwnerID] = c.clone()
	return c, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, ownerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[ownerID]; !ok {
		return ErrNotFound
	}
	delete(r.carts, ownerID)
	return nil
}

func (r *InMemoryRepository) DeleteIfVersion(_ context.Context, ownerID int, version int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[ownerID]
	if !ok {
		return ErrNotFound
	}
	if c.Version != version {
		return ErrVersionConflict
	}
	delete(r.carts, ownerID)
	return nil
}
