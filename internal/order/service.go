package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/gifty-backend/internal/cart"
	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/product"
	"github.com/wichananm65/gifty-backend/internal/user"
)

const productLookupConcurrency = 8

// StatusPolicy decides which status transitions an admin may make.
type StatusPolicy string

const (
	// PolicyPermissive allows any status to any status.
	PolicyPermissive StatusPolicy = "permissive"
	// PolicyForward rejects moving an order back to an earlier status.
	PolicyForward StatusPolicy = "forward"
)

type CartSource interface {
	ForCheckout(ctx context.Context, ownerID int) (cart.Cart, error)
	Invalidate(ctx context.Context, ownerID int)
}

type ProductSource interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
}

type BoxSource interface {
	GetByID(ctx context.Context, id int) (giftbox.GiftBox, error)
}

type OwnerDirectory interface {
	Lookup(ctx context.Context, ids []int) (map[int]user.Summary, error)
}

// Deps are the collaborators of Service. Placer defaults to a
// CompensatingPlacer over Repo and CartStore when nil.
type Deps struct {
	Repo      Repository
	Placer    Placer
	Carts     CartSource
	CartStore CartDeleter
	Products  ProductSource
	Boxes     BoxSource
	Owners    OwnerDirectory
	Policy    StatusPolicy
	Log       *slog.Logger
}

type Service struct {
	repo     Repository
	placer   Placer
	carts    CartSource
	products ProductSource
	boxes    BoxSource
	owners   OwnerDirectory
	policy   StatusPolicy
	log      *slog.Logger
	locks    ownerLocks
}

func NewService(d Deps) *Service {
	placer := d.Placer
	if placer == nil {
		placer = NewCompensatingPlacer(d.Repo, d.CartStore, d.Log)
	}
	policy := d.Policy
	if policy == "" {
		policy = PolicyPermissive
	}
	return &Service{
		repo:     d.Repo,
		placer:   placer,
		carts:    d.Carts,
		products: d.Products,
		boxes:    d.Boxes,
		owners:   d.Owners,
		policy:   policy,
		log:      d.Log,
	}
}

// PlaceOrder turns the owner's cart into a pending order priced from the
// current catalog and deletes the cart. With a non-empty idempotencyKey, a
// repeated call returns the order created by the first one; created then
// reports false.
func (s *Service) PlaceOrder(ctx context.Context, ownerID int, delivery Delivery, idempotencyKey string) (o Order, created bool, err error) {
	unlock := s.locks.lock(ownerID)
	defer unlock()

	if idempotencyKey != "" {
		existing, err := s.repo.GetByIdempotencyKey(ctx, ownerID, idempotencyKey)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Order{}, false, err
		}
	}

	c, err := s.carts.ForCheckout(ctx, ownerID)
	if errors.Is(err, cart.ErrNotFound) {
		return Order{}, false, ErrEmptyCart
	}
	if err != nil {
		return Order{}, false, fmt.Errorf("read cart: %w", err)
	}
	if len(c.Items) == 0 {
		return Order{}, false, ErrEmptyCart
	}

	delivery, err = delivery.normalize()
	if err != nil {
		return Order{}, false, err
	}

	lines, err := s.snapshot(ctx, c.Items)
	if err != nil {
		return Order{}, false, err
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}

	var boxID *int
	if c.GiftBoxID != nil {
		box, err := s.boxes.GetByID(ctx, *c.GiftBoxID)
		switch {
		case err == nil:
			total = total.Add(box.BasePrice)
			boxID = &box.ID
		case errors.Is(err, giftbox.ErrNotFound):
			s.log.Warn("selected gift box no longer exists, ordering without box",
				"owner_id", ownerID, "gift_box_id", *c.GiftBoxID)
		default:
			return Order{}, false, fmt.Errorf("resolve gift box: %w", err)
		}
	}

	placed, err := s.placer.Place(ctx, Order{
		OwnerID:        ownerID,
		Items:          lines,
		GiftBoxID:      boxID,
		Delivery:       delivery,
		TotalPrice:     total.Round(2),
		Status:         StatusPending,
		IdempotencyKey: idempotencyKey,
	}, c.Version)
	switch {
	case err == nil:
	case errors.Is(err, cart.ErrNotFound):
		return Order{}, false, ErrEmptyCart
	case errors.Is(err, cart.ErrVersionConflict):
		return Order{}, false, ErrCartChanged
	case errors.Is(err, ErrDuplicateOrder) && idempotencyKey != "":
		// another process won the race with the same key
		existing, getErr := s.repo.GetByIdempotencyKey(ctx, ownerID, idempotencyKey)
		if getErr != nil {
			return Order{}, false, fmt.Errorf("read duplicate order: %w", getErr)
		}
		return existing, false, nil
	default:
		return Order{}, false, fmt.Errorf("place order: %w", err)
	}

	s.carts.Invalidate(ctx, ownerID)
	s.log.Info("order placed",
		"order_id", placed.ID, "owner_id", ownerID, "total_price", placed.TotalPrice.String(), "items", len(placed.Items))
	return placed, true, nil
}

// snapshot resolves every cart item against the catalog, keeping the cart's
// line order.
func (s *Service) snapshot(ctx context.Context, items []cart.Item) ([]LineItem, error) {
	lines := make([]LineItem, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(productLookupConcurrency)
	for i, it := range items {
		g.Go(func() error {
			p, err := s.products.GetByID(gctx, it.ProductID)
			if errors.Is(err, product.ErrNotFound) {
				return &ProductUnavailableError{ProductID: it.ProductID}
			}
			if err != nil {
				return fmt.Errorf("resolve product %d: %w", it.ProductID, err)
			}
			if !p.IsActive {
				return &ProductUnavailableError{ProductID: p.ID, Name: p.Name}
			}
			lines[i] = LineItem{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: it.Quantity}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *Service) ListOwn(ctx context.Context, ownerID int) ([]Order, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListAll returns every order, newest first, with its owner attached.
// Owner is nil for users that no longer exist.
func (s *Service) ListAll(ctx context.Context) ([]AdminView, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	ids := make([]int, 0)
	for _, o := range orders {
		if _, ok := seen[o.OwnerID]; !ok {
			seen[o.OwnerID] = struct{}{}
			ids = append(ids, o.OwnerID)
		}
	}
	owners, err := s.owners.Lookup(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup owners: %w", err)
	}

	views := make([]AdminView, 0, len(orders))
	for _, o := range orders {
		v := AdminView{Order: o}
		if owner, ok := owners[o.OwnerID]; ok {
			v.Owner = &owner
		}
		views = append(views, v)
	}
	return views, nil
}

// Get returns one order with its owner and gift box resolved.
func (s *Service) Get(ctx context.Context, id int) (AdminView, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return AdminView{}, err
	}
	v := AdminView{Order: o}

	owners, err := s.owners.Lookup(ctx, []int{o.OwnerID})
	if err != nil {
		return AdminView{}, fmt.Errorf("lookup owner: %w", err)
	}
	if owner, ok := owners[o.OwnerID]; ok {
		v.Owner = &owner
	}

	if o.GiftBoxID != nil {
		box, err := s.boxes.GetByID(ctx, *o.GiftBoxID)
		switch {
		case err == nil:
			v.GiftBox = &box
		case !errors.Is(err, giftbox.ErrNotFound):
			return AdminView{}, fmt.Errorf("resolve gift box: %w", err)
		}
	}
	return v, nil
}

// TransitionStatus sets an order's status subject to the configured policy.
func (s *Service) TransitionStatus(ctx context.Context, id int, status string) (Order, error) {
	next, ok := statusRank(status)
	if !ok {
		return Order{}, ErrInvalidStatus
	}

	if s.policy == PolicyForward {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return Order{}, err
		}
		if cur, _ := statusRank(current.Status); next < cur {
			return Order{}, &IllegalTransitionError{From: current.Status, To: status}
		}
	}

	o, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return Order{}, err
	}
	s.log.Info("order status changed", "order_id", id, "status", status)
	return o, nil
}

// All returns every order for reporting.
func (s *Service) All(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}
