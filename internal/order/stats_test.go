package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString
	orders := []Order{
		{ID: 1, Status: StatusDelivered, TotalPrice: price("28.50"), CreatedAt: base,
			Items: []LineItem{{Name: "Teddy Bear", Price: price("10.00"), Quantity: 2}, {Name: "Chocolate", Price: price("5.50"), Quantity: 1}}},
		{ID: 2, Status: StatusPending, TotalPrice: price("16.50"), CreatedAt: base.Add(time.Hour),
			Items: []LineItem{{Name: "Chocolate", Price: price("5.50"), Quantity: 3}}},
		{ID: 3, Status: StatusPending, TotalPrice: price("12.00"), CreatedAt: base.Add(2 * time.Hour),
			Items: []LineItem{{Name: "Teddy Bear", Price: price("12.00"), Quantity: 1}}},
	}

	sum := Summarize(orders, 10, 2)

	assert.Equal(t, 3, sum.TotalOrders)
	assert.True(t, sum.TotalRevenue.Equal(price("57.00")))
	assert.Equal(t, StatusCounts{Pending: 2, Delivered: 1}, sum.StatusCounts)

	require.Len(t, sum.MostSold, 2)
	assert.Equal(t, "Chocolate", sum.MostSold[0].Name)
	assert.Equal(t, 4, sum.MostSold[0].TotalSold)
	assert.True(t, sum.MostSold[0].Revenue.Equal(price("22.00")))
	assert.Equal(t, "Teddy Bear", sum.MostSold[1].Name)
	assert.Equal(t, 3, sum.MostSold[1].TotalSold)
	assert.True(t, sum.MostSold[1].Revenue.Equal(price("32.00")))

	require.Len(t, sum.RecentOrders, 2)
	assert.Equal(t, 3, sum.RecentOrders[0].ID)
	assert.Equal(t, 1, sum.RecentOrders[0].ItemCount)
	assert.Equal(t, 2, sum.RecentOrders[1].ID)
	assert.Equal(t, 1, orders[0].ID, "input order is left alone")
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil, 10, 5)
	assert.True(t, sum.TotalRevenue.IsZero())
	assert.NotNil(t, sum.MostSold)
	assert.NotNil(t, sum.RecentOrders)
}

func TestSummarize_TopNIsBounded(t *testing.T) {
	var orders []Order
	for i := 0; i < 12; i++ {
		orders = append(orders, Order{ID: i + 1, Items: []LineItem{{Name: string(rune('a' + i)), Price: decimal.NewFromInt(1), Quantity: i + 1}}})
	}
	sum := Summarize(orders, 10, 5)
	require.Len(t, sum.MostSold, 10)
	assert.Equal(t, "l", sum.MostSold[0].Name)
	assert.Len(t, sum.RecentOrders, 5)
}
