package readybox

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/product"
)

type ProductSource interface {
	ListByIDs(ctx context.Context, ids []int) ([]product.Product, error)
}

type BoxSource interface {
	GetByID(ctx context.Context, id int) (giftbox.GiftBox, error)
}

// Service keeps ready box prices in line with the catalog at write time and
// resolves boxes and products on read.
type Service struct {
	repo     Repository
	products ProductSource
	boxes    BoxSource
}

func NewService(r Repository, products ProductSource, boxes BoxSource) *Service {
	return &Service{repo: r, products: products, boxes: boxes}
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]View, error) {
	boxes, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, boxes)
}

func (s *Service) Get(ctx context.Context, id int) (View, error) {
	rb, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	views, err := s.populate(ctx, []ReadyBox{rb})
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

// GetRaw returns the stored ready box without resolving references.
func (s *Service) GetRaw(ctx context.Context, id int) (ReadyBox, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, rb ReadyBox) (View, error) {
	normalize(&rb)
	total, err := s.price(ctx, rb)
	if err != nil {
		return View{}, err
	}
	rb.TotalPrice = total

	created, err := s.repo.Create(ctx, rb)
	if err != nil {
		return View{}, err
	}
	return s.Get(ctx, created.ID)
}

func (s *Service) Update(ctx context.Context, id int, rb ReadyBox) (View, error) {
	normalize(&rb)
	total, err := s.price(ctx, rb)
	if err != nil {
		return View{}, err
	}
	rb.TotalPrice = total

	if _, err := s.repo.Update(ctx, id, rb); err != nil {
		return View{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context, activeOnly bool) (int, error) {
	return s.repo.Count(ctx, activeOnly)
}

// price is the box base price plus every item at the current catalog price.
// Products that do not exist contribute nothing.
func (s *Service) price(ctx context.Context, rb ReadyBox) (decimal.Decimal, error) {
	total := decimal.Zero
	if rb.GiftBoxID != nil {
		box, err := s.boxes.GetByID(ctx, *rb.GiftBoxID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(box.BasePrice)
	}

	products, err := s.products.ListByIDs(ctx, rb.productIDs())
	if err != nil {
		return decimal.Zero, fmt.Errorf("resolve products: %w", err)
	}
	prices := make(map[int]decimal.Decimal, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}
	for _, it := range rb.Items {
		if price, ok := prices[it.ProductID]; ok {
			total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	return total.Round(2), nil
}

func (s *Service) populate(ctx context.Context, boxes []ReadyBox) ([]View, error) {
	var ids []int
	for _, rb := range boxes {
		ids = append(ids, rb.productIDs()...)
	}
	products, err := s.products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	byID := make(map[int]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	giftBoxes := make(map[int]*giftbox.GiftBox)
	views := make([]View, 0, len(boxes))
	for _, rb := range boxes {
		v := View{ReadyBox: rb, Items: make([]ItemView, 0, len(rb.Items))}
		for _, it := range rb.Items {
			line := ItemView{ProductID: it.ProductID, Quantity: it.Quantity}
			if p, ok := byID[it.ProductID]; ok {
				line.Product = &p
			}
			v.Items = append(v.Items, line)
		}

		if rb.GiftBoxID != nil {
			box, seen := giftBoxes[*rb.GiftBoxID]
			if !seen {
				b, err := s.boxes.GetByID(ctx, *rb.GiftBoxID)
				switch {
				case err == nil:
					box = &b
				case !errors.Is(err, giftbox.ErrNotFound):
					return nil, fmt.Errorf("resolve gift box: %w", err)
				}
				giftBoxes[*rb.GiftBoxID] = box
			}
			v.GiftBox = box
		}
		views = append(views, v)
	}
	return views, nil
}
