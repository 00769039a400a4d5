package order

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type ProductSales struct {
	Name      string          `json:"name"`
	TotalSold int             `json:"totalSold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type RecentOrder struct {
	ID         int             `json:"id"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     string          `json:"status"`
	ItemCount  int             `json:"itemCount"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type StatusCounts struct {
	Pending   int `json:"pending"`
	Preparing int `json:"preparing"`
	Shipped   int `json:"shipped"`
	Delivered int `json:"delivered"`
}

// Summary aggregates a set of orders for the admin dashboard.
type Summary struct {
	TotalOrders  int
	TotalRevenue decimal.Decimal
	StatusCounts StatusCounts
	MostSold     []ProductSales
	RecentOrders []RecentOrder
}

// Summarize totals revenue over all orders, ranks line items by name and
// quantity sold (top mostSold) and lists the latest recent orders.
func Summarize(orders []Order, mostSold, recent int) Summary {
	sum := Summary{
		TotalOrders:  len(orders),
		TotalRevenue: decimal.Zero,
		MostSold:     make([]ProductSales, 0),
		RecentOrders: make([]RecentOrder, 0),
	}

	sales := make(map[string]*ProductSales)
	for _, o := range orders {
		sum.TotalRevenue = sum.TotalRevenue.Add(o.TotalPrice)

		switch o.Status {
		case StatusPending:
			sum.StatusCounts.Pending++
		case StatusPreparing:
			sum.StatusCounts.Preparing++
		case StatusShipped:
			sum.StatusCounts.Shipped++
		case StatusDelivered:
			sum.StatusCounts.Delivered++
		}

		for _, l := range o.Items {
			ps, ok := sales[l.Name]
			if !ok {
				ps = &ProductSales{Name: l.Name, Revenue: decimal.Zero}
				sales[l.Name] = ps
			}
			ps.TotalSold += l.Quantity
			ps.Revenue = ps.Revenue.Add(l.Subtotal())
		}
	}

	for _, ps := range sales {
		sum.MostSold = append(sum.MostSold, *ps)
	}
	sort.Slice(sum.MostSold, func(i, j int) bool {
		a, b := sum.MostSold[i], sum.MostSold[j]
		if a.TotalSold != b.TotalSold {
			return a.TotalSold > b.TotalSold
		}
		return a.Name < b.Name
	})
	if len(sum.MostSold) > mostSold {
		sum.MostSold = sum.MostSold[:mostSold]
	}

	latest := make([]Order, len(orders))
	copy(latest, orders)
	sortNewestFirst(latest)
	if len(latest) > recent {
		latest = latest[:recent]
	}
	for _, o := range latest {
		sum.RecentOrders = append(sum.RecentOrders, RecentOrder{
			ID:         o.ID,
			TotalPrice: o.TotalPrice,
			Status:     o.Status,
			ItemCount:  len(o.Items),
			CreatedAt:  o.CreatedAt,
		})
	}
	return sum
}
