package order

import (
	"context"
	"log/slog"
)

// Placer persists a new order and consumes the cart it was built from as
// one unit: either both happen or neither does. It returns
// cart.ErrNotFound or cart.ErrVersionConflict when the cart is gone or no
// longer at cartVersion.
type Placer interface {
	Place(ctx context.Context, o Order, cartVersion int64) (Order, error)
}

type CartDeleter interface {
	DeleteIfVersion(ctx context.Context, ownerID int, version int64) error
}

// CompensatingPlacer is used when orders and carts live in different
// stores. It creates the order first and deletes it again if the
// conditional cart delete fails.
type CompensatingPlacer struct {
	orders Repository
	carts  CartDeleter
	log    *slog.Logger
}

func NewCompensatingPlacer(orders Repository, carts CartDeleter, log *slog.Logger) *CompensatingPlacer {
	return &CompensatingPlacer{orders: orders, carts: carts, log: log}
}

func (p *CompensatingPlacer) Place(ctx context.Context, o Order, cartVersion int64) (Order, error) {
	created, err := p.orders.Create(ctx, o)
	if err != nil {
		return Order{}, err
	}

	if err := p.carts.DeleteIfVersion(ctx, o.OwnerID, cartVersion); err != nil {
		// The order must not outlive a failed checkout, even if the caller
		// has gone away.
		cleanupCtx := context.WithoutCancel(ctx)
		if delErr := p.orders.Delete(cleanupCtx, created.ID); delErr != nil {
			p.log.Error("failed to roll back order after cart delete failure",
				"order_id", created.ID, "owner_id", o.OwnerID, "error", delErr)
		}
		return Order{}, err
	}
	return created, nil
}
