package readybox

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrNotFound = errors.New("ready box not found")

type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]ReadyBox, error)
	GetByID(ctx context.Context, id int) (ReadyBox, error)
	Create(ctx context.Context, rb ReadyBox) (ReadyBox, error)
	Update(ctx context.Context, id int, rb ReadyBox) (ReadyBox, error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context, activeOnly bool) (int, error)
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []ReadyBox
	nextID  int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) List(_ context.Context, activeOnly bool) ([]ReadyBox, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ReadyBox, 0, len(r.storage))
	for _, rb := range r.storage {
		if activeOnly && !rb.IsActive {
			continue
		}
		out = append(out, clone(rb))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (ReadyBox, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rb := range r.storage {
		if rb.ID == id {
			return clone(rb), nil
		}
	}
	return ReadyBox{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, rb ReadyBox) (ReadyBox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rb.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	rb.CreatedAt = now
	rb.UpdatedAt = now
	r.storage = append(r.storage, clone(rb))
	return rb, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int, rb ReadyBox) (ReadyBox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.storage {
		if existing.ID == id {
			rb.ID = id
			rb.CreatedAt = existing.CreatedAt
			rb.UpdatedAt = time.Now().UTC()
			r.storage[i] = clone(rb)
			return rb, nil
		}
	}
	return ReadyBox{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, rb := range r.storage {
		if rb.ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Count(_ context.Context, activeOnly bool) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, rb := range r.storage {
		if !activeOnly || rb.IsActive {
			n++
		}
	}
	return n, nil
}

func clone(rb ReadyBox) ReadyBox {
	items := make([]Item, len(rb.Items))
	copy(items, rb.Items)
	rb.Items = items
	if rb.GiftBoxID != nil {
		id := *rb.GiftBoxID
		rb.GiftBoxID = &id
	}
	return rb
}
