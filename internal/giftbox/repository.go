package giftbox

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("gift box not found")

type Repository interface {
	List(ctx context.Context) ([]GiftBox, error)
	GetByID(ctx context.Context, id int) (GiftBox, error)
	Create(ctx context.Context, b GiftBox) (GiftBox, error)
	Update(ctx context.Context, id int, b GiftBox) (GiftBox, error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	boxes  []GiftBox
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) List(_ context.Context) ([]GiftBox, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]GiftBox, len(r.boxes))
	copy(out, r.boxes)
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (GiftBox, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.boxes {
		if b.ID == id {
			return b, nil
		}
	}
	return GiftBox{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, b GiftBox) (GiftBox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	r.boxes = append(r.boxes, b)
	return b, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int, b GiftBox) (GiftBox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.boxes {
		if existing.ID == id {
			b.ID = id
			b.CreatedAt = existing.CreatedAt
			b.UpdatedAt = time.Now().UTC()
			r.boxes[i] = b
			return b, nil
		}
	}
	return GiftBox{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, b := range r.boxes {
		if b.ID == id {
			r.boxes = append(r.boxes[:i], r.boxes[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.boxes), nil
}
