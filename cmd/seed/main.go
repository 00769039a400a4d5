package main

import (
	"context"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/infrastructure/database/postgres"
	"github.com/wichananm65/gifty-backend/internal/infrastructure/logger"
	"github.com/wichananm65/gifty-backend/internal/product"
	"github.com/wichananm65/gifty-backend/internal/readybox"
	"github.com/wichananm65/gifty-backend/internal/user"
)

type seedConfig struct {
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	AdminName     string `env:"SEED_ADMIN_NAME" envDefault:"Admin"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	var cfg seedConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword == "" {
		return fmt.Errorf("SEED_ADMIN_PASSWORD is required with SEED_ADMIN_EMAIL")
	}

	log := logger.New(logger.Options{Service: "gifty-seed", Level: cfg.LogLevel})

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		return err
	}

	products := product.NewPostgresRepository(db)
	giftBoxes := giftbox.NewService(giftbox.NewPostgresRepository(db))
	s := seeder{
		// Tokens are never issued by the seeder.
		users:      user.NewService(user.NewPostgresRepository(db), nil),
		products:   product.NewService(products),
		giftBoxes:  giftBoxes,
		readyBoxes: readybox.NewService(readybox.NewPostgresRepository(db), products, giftBoxes),
		log:        log,
	}
	return s.run(ctx, admin{name: cfg.AdminName, email: cfg.AdminEmail, password: cfg.AdminPassword})
}
