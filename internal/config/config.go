package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr     string `env:"ADDR" envDefault:":8000"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	Store         string `env:"STORE" envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	CartStore string `env:"CART_STORE" envDefault:"postgres"`
	MongoURI  string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB   string `env:"MONGO_DB" envDefault:"gifty"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CartCacheTTL  time.Duration `env:"CART_CACHE_TTL" envDefault:"15m"`

	OrderStatusPolicy string `env:"ORDER_STATUS_POLICY" envDefault:"permissive"`

	ModelDir    string `env:"MODEL_DIR" envDefault:"./uploads/models"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}

	switch c.CartStore {
	case StorePostgres, StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("CART_STORE must be one of postgres, mongo, memory, got %q", c.CartStore)
	}

	if c.CartStore == StorePostgres && c.Store != StorePostgres {
		return errors.New("CART_STORE=postgres requires STORE=postgres")
	}
	if c.Store == StorePostgres && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}

	switch c.OrderStatusPolicy {
	case "permissive", "forward":
	default:
		return fmt.Errorf("ORDER_STATUS_POLICY must be permissive or forward, got %q", c.OrderStatusPolicy)
	}
	return nil
}
