package cart

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/product"
)

const maxMutationAttempts = 3

var (
	ErrProductUnavailable = errors.New("product is not available")
	ErrZeroQuantity       = errors.New("quantity must not be zero")
)

type ProductSource interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
	ListByIDs(ctx context.Context, ids []int) ([]product.Product, error)
}

type BoxSource interface {
	GetByID(ctx context.Context, id int) (giftbox.GiftBox, error)
}

// Service orchestrates cart operations. Reads go through the cache; every
// write goes to the repository with the version it read and then drops the
// cached copy.
type Service struct {
	repo     Repository
	cache    Cache
	products ProductSource
	boxes    BoxSource
	log      *slog.Logger
	group    singleflight.Group
}

func NewService(repo Repository, cache Cache, products ProductSource, boxes BoxSource, log *slog.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{repo: repo, cache: cache, products: products, boxes: boxes, log: log}
}

// View returns the owner's cart with live product data, or an empty view
// when the owner has no cart.
func (s *Service) View(ctx context.Context, ownerID int) (View, error) {
	c, err := s.get(ctx, ownerID)
	if errors.Is(err, ErrNotFound) {
		return emptyView(), nil
	}
	if err != nil {
		return View{}, err
	}
	return s.populate(ctx, c)
}

// Add changes a product's quantity by qty, creating the cart if needed.
// Positive quantities require the product to exist and be active;
// otherwise the result is ErrProductUnavailable.
func (s *Service) Add(ctx context.Context, ownerID, productID, qty int) (View, error) {
	if qty == 0 {
		return View{}, ErrZeroQuantity
	}
	if qty > 0 {
		p, err := s.products.GetByID(ctx, productID)
		if errors.Is(err, product.ErrNotFound) {
			return View{}, ErrProductUnavailable
		}
		if err != nil {
			return View{}, err
		}
		if !p.IsActive {
			return View{}, ErrProductUnavailable
		}
	}

	c, err := s.mutate(ctx, ownerID, qty > 0, func(c *Cart) error {
		if !c.add(productID, qty) {
			return ErrItemNotFound
		}
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return s.populate(ctx, c)
}

// Update sets a product's quantity; qty <= 0 removes the line.
func (s *Service) Update(ctx context.Context, ownerID, productID, qty int) (View, error) {
	c, err := s.mutate(ctx, ownerID, false, func(c *Cart) error {
		if !c.setQuantity(productID, qty) {
			return ErrItemNotFound
		}
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return s.populate(ctx, c)
}

func (s *Service) Remove(ctx context.Context, ownerID, productID int) (View, error) {
	c, err := s.mutate(ctx, ownerID, false, func(c *Cart) error {
		c.remove(productID)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return s.populate(ctx, c)
}

// SetGiftBox selects a box type, or clears the selection when boxID is nil.
func (s *Service) SetGiftBox(ctx context.Context, ownerID int, boxID *int) (View, error) {
	if boxID != nil {
		if _, err := s.boxes.GetByID(ctx, *boxID); err != nil {
			return View{}, err
		}
	}

	c, err := s.mutate(ctx, ownerID, true, func(c *Cart) error {
		c.GiftBoxID = boxID
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return s.populate(ctx, c)
}

// Clear deletes the cart. Clearing a missing cart is not an error.
func (s *Service) Clear(ctx context.Context, ownerID int) error {
	if err := s.repo.Delete(ctx, ownerID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	s.Invalidate(ctx, ownerID)
	return nil
}

// ForCheckout reads the cart straight from the repository, bypassing the
// cache, so the returned version can be used for a conditional delete.
func (s *Service) ForCheckout(ctx context.Context, ownerID int) (Cart, error) {
	return s.repo.Get(ctx, ownerID)
}

func (s *Service) Invalidate(ctx context.Context, ownerID int) {
	if err := s.cache.Delete(ctx, ownerID); err != nil {
		s.log.Warn("cart cache invalidation failed", "owner_id", ownerID, "error", err)
	}
}

func (s *Service) get(ctx context.Context, ownerID int) (Cart, error) {
	c, err := s.cache.Get(ctx, ownerID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.log.Warn("cart cache read failed", "owner_id", ownerID, "error", err)
	}

	v, err, _ := s.group.Do(strconv.Itoa(ownerID), func() (any, error) {
		gen, genErr := s.cache.Generation(ctx, ownerID)
		c, err := s.repo.Get(ctx, ownerID)
		if err != nil {
			return Cart{}, err
		}
		if genErr != nil {
			s.log.Warn("cart cache generation read failed", "owner_id", ownerID, "error", genErr)
			return c, nil
		}
		if err := s.cache.Set(ctx, c, gen); err != nil {
			s.log.Warn("cart cache write failed", "owner_id", ownerID, "error", err)
		}
		return c, nil
	})
	if err != nil {
		return Cart{}, err
	}
	return v.(Cart).clone(), nil
}

// mutate applies fn to the freshly read cart and saves it, retrying when a
// concurrent writer bumped the version in between.
func (s *Service) mutate(ctx context.Context, ownerID int, create bool, fn func(*Cart) error) (Cart, error) {
	for attempt := 0; attempt < maxMutationAttempts; attempt++ {
		c, err := s.repo.Get(ctx, ownerID)
		switch {
		case errors.Is(err, ErrNotFound):
			if !create {
				return Cart{}, ErrNotFound
			}
			c = Cart{OwnerID: ownerID, Items: []Item{}}
		case err != nil:
			return Cart{}, err
		}

		if err := fn(&c); err != nil {
			return Cart{}, err
		}

		saved, err := s.repo.Save(ctx, c)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return Cart{}, err
		}
		s.Invalidate(ctx, ownerID)
		return saved, nil
	}
	return Cart{}, ErrVersionConflict
}

func (s *Service) populate(ctx context.Context, c Cart) (View, error) {
	view := emptyView()
	view.Version = c.Version

	products, err := s.products.ListByIDs(ctx, c.productIDs())
	if err != nil {
		return View{}, err
	}
	byID := make(map[int]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	total := decimal.Zero
	for _, it := range c.Items {
		line := ItemView{ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := byID[it.ProductID]; ok {
			line.Product = &p
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		view.Items = append(view.Items, line)
	}

	if c.GiftBoxID != nil {
		box, err := s.boxes.GetByID(ctx, *c.GiftBoxID)
		switch {
		case err == nil:
			view.GiftBox = &box
			total = total.Add(box.BasePrice)
		case !errors.Is(err, giftbox.ErrNotFound):
			return View{}, err
		}
	}

	view.EstimatedTotal = total
	return view, nil
}
