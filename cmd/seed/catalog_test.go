package main

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/infrastructure/logger"
	"github.com/wichananm65/gifty-backend/internal/product"
	"github.com/wichananm65/gifty-backend/internal/readybox"
	"github.com/wichananm65/gifty-backend/internal/user"
)

func newMemorySeeder() (seeder, *user.InMemoryRepository) {
	users := user.NewInMemoryRepository(nil)
	products := product.NewInMemoryRepository(nil)
	boxes := giftbox.NewService(giftbox.NewInMemoryRepository())
	return seeder{
		users:      user.NewService(users, nil),
		products:   product.NewService(products),
		giftBoxes:  boxes,
		readyBoxes: readybox.NewService(readybox.NewInMemoryRepository(), products, boxes),
		log:        logger.Discard(),
	}, users
}

func TestSeeder_FillsEmptyCatalogOnce(t *testing.T) {
	ctx := context.Background()
	s, users := newMemorySeeder()
	a := admin{name: "Admin", email: "admin@gifty.test", password: "changeme"}

	require.NoError(t, s.run(ctx, a))

	n, err := s.products.Count(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, len(catalog), n)

	n, err = s.giftBoxes.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(boxTypes), n)

	rbs, err := s.readyBoxes.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, rbs, 3)
	for _, rb := range rbs {
		if rb.Name == "Self-Care Starter" {
			// Medium box 10 + 42.99 + 27.99 + 38.99
			assert.True(t, rb.TotalPrice.Equal(decimal.RequireFromString("119.97")), rb.TotalPrice.String())
		}
	}

	u, err := users.GetByEmail(ctx, a.email)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)
	assert.NotEqual(t, a.password, u.Password)

	require.NoError(t, s.run(ctx, a))
	n, err = s.products.Count(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, len(catalog), n)
}

func TestCatalogCoversEveryCategory(t *testing.T) {
	seen := map[string]int{}
	for _, p := range catalog {
		seen[p.category]++
	}
	for _, c := range product.AllowedCategories {
		assert.Positive(t, seen[c], c)
	}
}
