package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is a read-through copy of stored carts. It is always safe to drop.
//
// A reader takes Generation before reading the repository and hands it to
// Set. Delete bumps the generation, so a Set carrying a generation taken
// before the Delete is dropped instead of restoring an outdated cart.
type Cache interface {
	Get(ctx context.Context, ownerID int) (Cart, error)
	Generation(ctx context.Context, ownerID int) (int64, error)
	Set(ctx context.Context, c Cart, gen int64) error
	Delete(ctx context.Context, ownerID int) error
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, int) (Cart, error)         { return Cart{}, ErrCacheMiss }
func (NopCache) Generation(context.Context, int) (int64, error) { return 0, nil }
func (NopCache) Set(context.Context, Cart, int64) error         { return nil }
func (NopCache) Delete(context.Context, int) error              { return nil }

// setIfGeneration writes the cart only while the generation counter still
// holds the value the reader saw. A missing counter counts as 0.
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisCache{client: client, baseTTL: ttl}
}

func (r *RedisCache) Get(ctx context.Context, ownerID int) (Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, ErrCacheMiss
	}
	if err != nil {
		return Cart{}, fmt.Errorf("redis get failed: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return c, nil
}

// Generation returns the owner's invalidation counter, 0 when unset.
func (r *RedisCache) Generation(ctx context.Context, ownerID int) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return gen, nil
}

// Set stores c with the base TTL plus up to 20% jitter so entries written
// together do not expire together. The write is skipped when Delete ran
// since gen was read.
func (r *RedisCache) Set(ctx context.Context, c Cart, gen int64) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Int63n(int64(r.baseTTL/5) + 1))
	ttl := r.baseTTL + jitter
	keys := []string{cacheKey(c.OwnerID), generationKey(c.OwnerID)}
	if err := setIfGeneration.Run(ctx, r.client, keys, strconv.FormatInt(gen, 10), data, ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete drops the cached cart and bumps the generation. The counter lives
// longer than any cached entry so an in-flight reader cannot see it reset.
func (r *RedisCache) Delete(ctx context.Context, ownerID int) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(ownerID))
		pipe.Expire(ctx, generationKey(ownerID), 2*r.baseTTL)
		pipe.Del(ctx, cacheKey(ownerID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(ownerID int) string {
	return fmt.Sprintf("cart:%d", ownerID)
}

func generationKey(ownerID int) string {
	return fmt.Sprintf("cart:%d:gen", ownerID)
}
