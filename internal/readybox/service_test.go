package readybox

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/product"
)

type fixture struct {
	svc      *Service
	products *product.InMemoryRepository
	boxes    *giftbox.InMemoryRepository
}

// newFixture seeds product 1 (12.00), product 2 (4.25) and box 1 (base 5.00).
func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	products := product.NewInMemoryRepository(nil)
	for _, p := range []product.Product{
		{Name: "Rose Bouquet", Price: decimal.RequireFromString("12.00"), IsActive: true},
		{Name: "Greeting Card", Price: decimal.RequireFromString("4.25"), IsActive: true},
	} {
		_, err := products.Create(ctx, p)
		require.NoError(t, err)
	}
	boxes := giftbox.NewInMemoryRepository()
	_, err := boxes.Create(ctx, giftbox.GiftBox{Name: "Romantic", BasePrice: decimal.RequireFromString("5.00")})
	require.NoError(t, err)

	return fixture{
		svc:      NewService(NewInMemoryRepository(), products, boxes),
		products: products,
		boxes:    boxes,
	}
}

func boxID(id int) *int { return &id }

func TestService_CreateComputesTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.svc.Create(ctx, ReadyBox{
		Name:      "Valentine",
		GiftBoxID: boxID(1),
		Items:     []Item{{ProductID: 1, Quantity: 2}, {ProductID: 2}, {ProductID: 77, Quantity: 3}},
		IsActive:  true,
	})
	require.NoError(t, err)

	// 5.00 + 2 × 12.00 + 1 × 4.25, the unknown product counts 0
	assert.True(t, v.TotalPrice.Equal(decimal.RequireFromString("33.25")), v.TotalPrice.String())
	require.Len(t, v.Items, 3)
	assert.Equal(t, 1, v.Items[1].Quantity)
	assert.Equal(t, "Rose Bouquet", v.Items[0].Product.Name)
	assert.Nil(t, v.Items[2].Product)
	require.NotNil(t, v.GiftBox)
	assert.Equal(t, "Romantic", v.GiftBox.Name)
}

func TestService_UpdateRecomputesFromCurrentPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.svc.Create(ctx, ReadyBox{Name: "Solo", GiftBoxID: boxID(1), Items: []Item{{ProductID: 2, Quantity: 1}}})
	require.NoError(t, err)

	card, err := f.products.GetByID(ctx, 2)
	require.NoError(t, err)
	card.Price = decimal.RequireFromString("6.00")
	_, err = f.products.Update(ctx, 2, card)
	require.NoError(t, err)

	// stored total follows the catalog only on write
	got, err := f.svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalPrice.Equal(decimal.RequireFromString("9.25")))

	raw, err := f.svc.GetRaw(ctx, v.ID)
	require.NoError(t, err)
	raw.Name = "Solo+"
	updated, err := f.svc.Update(ctx, v.ID, raw)
	require.NoError(t, err)
	assert.True(t, updated.TotalPrice.Equal(decimal.RequireFromString("11.00")))
	assert.Equal(t, "Solo+", updated.Name)

	_, err = f.svc.Update(ctx, 99, raw)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_UnknownGiftBoxIsRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), ReadyBox{Name: "X", GiftBoxID: boxID(8)})
	assert.ErrorIs(t, err, giftbox.ErrNotFound)
}

func TestService_ListFiltersInactiveAndToleratesDeletedBox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, ReadyBox{Name: "On", GiftBoxID: boxID(1), IsActive: true})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, ReadyBox{Name: "Off", GiftBoxID: boxID(1), IsActive: false})
	require.NoError(t, err)
	require.NoError(t, f.boxes.Delete(ctx, 1))

	active, err := f.svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "On", active[0].Name)
	assert.Nil(t, active[0].GiftBox)

	all, err := f.svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	n, err := f.svc.Count(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
