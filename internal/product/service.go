package product

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnavailable is returned by RequireAvailable for inactive products.
var ErrUnavailable = errors.New("product is not available")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) GetByID(ctx context.Context, id int) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ctx, ids)
}

// RequireAvailable returns the product if it exists and is active.
func (s *Service) RequireAvailable(ctx context.Context, id int) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !p.IsActive {
		return Product{}, ErrUnavailable
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	normalize(&p)
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int, p Product) (Product, error) {
	normalize(&p)
	return s.repo.Update(ctx, id, p)
}

func (s *Service) ToggleActive(ctx context.Context, id int) (Product, error) {
	return s.repo.ToggleActive(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context, activeOnly bool) (int, error) {
	return s.repo.Count(ctx, activeOnly)
}

func (s *Service) LowStock(ctx context.Context, limit int) ([]Product, error) {
	return s.repo.LowStock(ctx, LowStockThreshold, limit)
}

func normalize(p *Product) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Category == "" {
		p.Category = CategoryGeneral
	}
	p.Price = p.Price.Round(2)
}

// Validate reports field errors keyed by JSON field name.
func Validate(p Product) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(p.Name) == "" {
		errs["name"] = "name is required"
	}
	if p.Price.LessThan(decimal.Zero) {
		errs["price"] = "price must not be negative"
	}
	if p.Stock < 0 {
		errs["stock"] = "stock must not be negative"
	}
	if p.Category != "" && !isAllowedCategory(p.Category) {
		errs["category"] = "category must be one of " + strings.Join(AllowedCategories, ", ")
	}
	return errs
}
