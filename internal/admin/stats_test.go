package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/order"
	"github.com/wichananm65/gifty-backend/internal/product"
	"github.com/wichananm65/gifty-backend/internal/readybox"
	"github.com/wichananm65/gifty-backend/internal/user"
	"github.com/wichananm65/gifty-backend/internal/user/usertest"
)

type orderList []order.Order

func (o orderList) All(context.Context) ([]order.Order, error) { return o, nil }

type failingCounter struct{ err error }

func (f failingCounter) Count(context.Context) (int, error) { return 0, f.err }

func newStatsService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()

	users := user.NewInMemoryRepository(nil)
	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := users.Create(ctx, user.User{Name: "u", Email: email, Password: "x", Role: user.RoleCustomer})
		require.NoError(t, err)
	}

	products := product.NewInMemoryRepository(nil)
	for _, p := range []product.Product{
		{Name: "Mug", Price: decimal.NewFromInt(8), Stock: 4, IsActive: true},
		{Name: "Candle", Price: decimal.NewFromInt(6), Stock: 1, IsActive: true},
		{Name: "Plush", Price: decimal.NewFromInt(9), Stock: 30, IsActive: true},
		{Name: "Old", Price: decimal.NewFromInt(1), Stock: 0, IsActive: false},
	} {
		_, err := products.Create(ctx, p)
		require.NoError(t, err)
	}

	boxes := giftbox.NewInMemoryRepository()
	_, err := boxes.Create(ctx, giftbox.GiftBox{Name: "Small"})
	require.NoError(t, err)

	ready := readybox.NewInMemoryRepository()
	for _, active := range []bool{true, false} {
		_, err := ready.Create(ctx, readybox.ReadyBox{Name: "r", IsActive: active})
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	orders := orderList{
		{ID: 1, Status: order.StatusPending, TotalPrice: decimal.RequireFromString("16.00"), CreatedAt: now.Add(-time.Hour),
			Items: []order.LineItem{{Name: "Mug", Price: decimal.NewFromInt(8), Quantity: 2}}},
		{ID: 2, Status: order.StatusShipped, TotalPrice: decimal.RequireFromString("6.00"), CreatedAt: now,
			Items: []order.LineItem{{Name: "Candle", Price: decimal.NewFromInt(6), Quantity: 1}}},
	}

	return NewService(
		user.NewService(users, user.NewTokens("s")),
		orders,
		product.NewService(products),
		readybox.NewService(ready, products, boxes),
		giftbox.NewService(boxes),
	)
}

func TestStats(t *testing.T) {
	st, err := newStatsService(t).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, st.TotalUsers)
	assert.Equal(t, 2, st.TotalOrders)
	assert.True(t, st.TotalRevenue.Equal(decimal.NewFromInt(22)))
	assert.Equal(t, 4, st.TotalProducts)
	assert.Equal(t, 3, st.ActiveProducts)
	assert.Equal(t, 2, st.TotalReadyBoxes)
	assert.Equal(t, 1, st.ActiveReadyBoxes)
	assert.Equal(t, 1, st.TotalGiftBoxes)

	require.Len(t, st.LowStock, 2)
	assert.Equal(t, "Candle", st.LowStock[0].Name)
	assert.Equal(t, "Mug", st.LowStock[1].Name)

	require.Len(t, st.MostSold, 2)
	assert.Equal(t, "Mug", st.MostSold[0].Name)
	assert.Equal(t, order.StatusCounts{Pending: 1, Shipped: 1}, st.StatusCounts)
	require.Len(t, st.RecentOrders, 2)
	assert.Equal(t, 2, st.RecentOrders[0].ID)
}

func TestStats_PropagatesFailures(t *testing.T) {
	svc := newStatsService(t)
	boom := errors.New("db down")
	svc.users = failingCounter{err: boom}

	_, err := svc.Stats(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestStatsRoute(t *testing.T) {
	app := fiber.New()
	NewHandler(newStatsService(t)).RegisterRoutes(app.Group("/api"), usertest.Auth)

	get := func(role string) (*http.Response, []byte) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		if role != "" {
			req.Header.Set(usertest.HeaderUserID, "1")
			req.Header.Set(usertest.HeaderRole, role)
		}
		res, err := app.Test(req)
		require.NoError(t, err)
		raw, _ := io.ReadAll(res.Body)
		return res, raw
	}

	res, _ := get("")
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	res, _ = get(user.RoleCustomer)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)

	res, raw := get(user.RoleAdmin)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	for _, key := range []string{"totalUsers", "totalOrders", "totalRevenue", "totalProducts", "activeProducts",
		"totalReadyBoxes", "activeReadyBoxes", "totalGiftBoxes", "lowStock", "mostSold", "statusCounts", "recentOrders"} {
		assert.Contains(t, body, key)
	}
	assert.Equal(t, float64(0), body["statusCounts"].(map[string]any)["delivered"])
}
