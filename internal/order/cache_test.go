package order

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/gifty-backend/internal/cart"
	"github.com/wichananm65/gifty-backend/internal/infrastructure/logger"
)

// slowCartRepo holds the next Get open after reading, until release is
// closed.
type slowCartRepo struct {
	*cart.InMemoryRepository
	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (r *slowCartRepo) Get(ctx context.Context, ownerID int) (cart.Cart, error) {
	c, err := r.InMemoryRepository.Get(ctx, ownerID)
	if r.armed.CompareAndSwap(true, false) {
		close(r.read)
		<-r.release
	}
	return c, err
}

func TestPlaceOrder_CachedCartIsGoneAfterCheckout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	env := newTestEnv(t, PolicyPermissive)
	repo := &slowCartRepo{
		InMemoryRepository: cart.NewInMemoryRepository(),
		read:               make(chan struct{}),
		release:            make(chan struct{}),
	}
	env.cartRepo = repo.InMemoryRepository
	env.carts = cart.NewService(repo, cart.NewRedisCache(client, time.Hour), env.products, env.boxes, logger.Discard())
	svc := env.service(nil, PolicyPermissive)
	ctx := context.Background()
	env.fillCart(t, 1)

	// A cart read misses the cache and stalls after reading the store.
	repo.armed.Store(true)
	done := make(chan error, 1)
	go func() {
		_, err := env.carts.View(ctx, 1)
		done <- err
	}()
	<-repo.read

	_, created, err := svc.PlaceOrder(ctx, 1, validDelivery(), "")
	require.NoError(t, err)
	assert.True(t, created)

	close(repo.release)
	require.NoError(t, <-done)

	assert.False(t, mr.Exists("cart:1"))
	view, err := env.carts.View(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Nil(t, view.GiftBox)
}
