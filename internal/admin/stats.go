package admin

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/gifty-backend/internal/order"
	"github.com/wichananm65/gifty-backend/internal/product"
)

const (
	mostSoldLimit     = 10
	recentOrdersLimit = 5
	lowStockLimit     = 50
)

type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

type OrderSource interface {
	All(ctx context.Context) ([]order.Order, error)
}

type ProductSource interface {
	Count(ctx context.Context, activeOnly bool) (int, error)
	LowStock(ctx context.Context, limit int) ([]product.Product, error)
}

type ReadyBoxCounter interface {
	Count(ctx context.Context, activeOnly bool) (int, error)
}

type GiftBoxCounter interface {
	Count(ctx context.Context) (int, error)
}

type Stats struct {
	TotalUsers       int                  `json:"totalUsers"`
	TotalOrders      int                  `json:"totalOrders"`
	TotalRevenue     decimal.Decimal      `json:"totalRevenue"`
	TotalProducts    int                  `json:"totalProducts"`
	ActiveProducts   int                  `json:"activeProducts"`
	TotalReadyBoxes  int                  `json:"totalReadyBoxes"`
	ActiveReadyBoxes int                  `json:"activeReadyBoxes"`
	TotalGiftBoxes   int                  `json:"totalGiftBoxes"`
	LowStock         []product.Product    `json:"lowStock"`
	MostSold         []order.ProductSales `json:"mostSold"`
	StatusCounts     order.StatusCounts   `json:"statusCounts"`
	RecentOrders     []order.RecentOrder  `json:"recentOrders"`
}

type Service struct {
	users      UserCounter
	orders     OrderSource
	products   ProductSource
	readyBoxes ReadyBoxCounter
	giftBoxes  GiftBoxCounter
}

func NewService(users UserCounter, orders OrderSource, products ProductSource, readyBoxes ReadyBoxCounter, giftBoxes GiftBoxCounter) *Service {
	return &Service{users: users, orders: orders, products: products, readyBoxes: readyBoxes, giftBoxes: giftBoxes}
}

// Stats gathers the dashboard figures. The independent reads run
// concurrently; the first failure cancels the rest.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var (
		st     Stats
		orders []order.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	count := func(name string, dst *int, fn func(context.Context) (int, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			if err != nil {
				return fmt.Errorf("count %s: %w", name, err)
			}
			*dst = n
			return nil
		})
	}
	count("users", &st.TotalUsers, s.users.Count)
	count("products", &st.TotalProducts, func(ctx context.Context) (int, error) { return s.products.Count(ctx, false) })
	count("active products", &st.ActiveProducts, func(ctx context.Context) (int, error) { return s.products.Count(ctx, true) })
	count("ready boxes", &st.TotalReadyBoxes, func(ctx context.Context) (int, error) { return s.readyBoxes.Count(ctx, false) })
	count("active ready boxes", &st.ActiveReadyBoxes, func(ctx context.Context) (int, error) { return s.readyBoxes.Count(ctx, true) })
	count("gift boxes", &st.TotalGiftBoxes, s.giftBoxes.Count)
	g.Go(func() error {
		var err error
		orders, err = s.orders.All(gctx)
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		low, err := s.products.LowStock(gctx, lowStockLimit)
		if err != nil {
			return fmt.Errorf("low stock: %w", err)
		}
		st.LowStock = low
		return nil
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	sum := order.Summarize(orders, mostSoldLimit, recentOrdersLimit)
	st.TotalOrders = sum.TotalOrders
	st.TotalRevenue = sum.TotalRevenue
	st.StatusCounts = sum.StatusCounts
	st.MostSold = sum.MostSold
	st.RecentOrders = sum.RecentOrders
	if st.LowStock == nil {
		st.LowStock = []product.Product{}
	}
	return st, nil
}
