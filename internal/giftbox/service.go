package giftbox

import "context"

// Service provides business logic for box types.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) List(ctx context.Context) ([]GiftBox, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (GiftBox, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, b GiftBox) (GiftBox, error) {
	applyDefaults(&b)
	return s.repo.Create(ctx, b)
}

func (s *Service) Update(ctx context.Context, id int, b GiftBox) (GiftBox, error) {
	applyDefaults(&b)
	return s.repo.Update(ctx, id, b)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
