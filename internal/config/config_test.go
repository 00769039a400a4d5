package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/gifty")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, StorePostgres, cfg.CartStore)
	assert.Equal(t, 15*time.Minute, cfg.CartCacheTTL)
	assert.Equal(t, "permissive", cfg.OrderStatusPolicy)
	assert.True(t, cfg.RunMigrations)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE", "memory")
	t.Setenv("CART_STORE", "memory")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestValidate(t *testing.T) {
	base := Config{
		JWTSecret:         "s",
		Store:             StoreMemory,
		CartStore:         StoreMemory,
		OrderStatusPolicy: "permissive",
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown store", func(c *Config) { c.Store = "sqlite" }},
		{"unknown cart store", func(c *Config) { c.CartStore = "dynamo" }},
		{"postgres carts without postgres", func(c *Config) { c.CartStore = StorePostgres }},
		{"postgres without url", func(c *Config) { c.Store = StorePostgres }},
		{"unknown policy", func(c *Config) { c.OrderStatusPolicy = "strict" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	mongoCarts := base
	mongoCarts.CartStore = StoreMongo
	assert.NoError(t, mongoCarts.Validate())
}
