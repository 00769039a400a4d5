package order

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository persists orders. Create rejects a second order with the same
// (owner, idempotency key) pair with ErrDuplicateOrder.
type Repository interface {
	Create(ctx context.Context, o Order) (Order, error)
	GetByID(ctx context.Context, id int) (Order, error)
	GetByIdempotencyKey(ctx context.Context, ownerID int, key string) (Order, error)
	// ListByOwner and List return orders newest first.
	ListByOwner(ctx context.Context, ownerID int) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id int, status string) (Order, error)
	Delete(ctx context.Context, id int) error
}

// InMemoryRepository is used for tests and STORE=memory.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Order
	nextID  int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Create(_ context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.IdempotencyKey != "" {
		for _, existing := range r.storage {
			if existing.OwnerID == o.OwnerID && existing.IdempotencyKey == o.IdempotencyKey {
				return Order{}, ErrDuplicateOrder
			}
		}
	}

	o.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	o.Items = cloneItems(o.Items)
	r.storage = append(r.storage, o)
	return o, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.storage {
		if o.ID == id {
			return copyOrder(o), nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) GetByIdempotencyKey(_ context.Context, ownerID int, key string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.storage {
		if o.OwnerID == ownerID && key != "" && o.IdempotencyKey == key {
			return copyOrder(o), nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByOwner(_ context.Context, ownerID int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0)
	for _, o := range r.storage {
		if o.OwnerID == ownerID {
			out = append(out, copyOrder(o))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0, len(r.storage))
	for _, o := range r.storage {
		out = append(out, copyOrder(o))
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, id int, status string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage[i].Status = status
			r.storage[i].UpdatedAt = time.Now().UTC()
			return copyOrder(r.storage[i]), nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, o := range r.storage {
		if o.ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func sortNewestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}

func copyOrder(o Order) Order {
	o.Items = cloneItems(o.Items)
	if o.GiftBoxID != nil {
		id := *o.GiftBoxID
		o.GiftBoxID = &id
	}
	return o
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
