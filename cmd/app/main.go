package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wichananm65/gifty-backend/internal/admin"
	"github.com/wichananm65/gifty-backend/internal/cart"
	"github.com/wichananm65/gifty-backend/internal/config"
	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/infrastructure/database/mongo"
	"github.com/wichananm65/gifty-backend/internal/infrastructure/database/postgres"
	"github.com/wichananm65/gifty-backend/internal/infrastructure/logger"
	"github.com/wichananm65/gifty-backend/internal/infrastructure/shutdown"
	"github.com/wichananm65/gifty-backend/internal/interface/http/router"
	"github.com/wichananm65/gifty-backend/internal/order"
	"github.com/wichananm65/gifty-backend/internal/product"
	"github.com/wichananm65/gifty-backend/internal/readybox"
	"github.com/wichananm65/gifty-backend/internal/user"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type stores struct {
	users      user.Repository
	products   product.Repository
	giftBoxes  giftbox.Repository
	readyBoxes readybox.Repository
	carts      cart.Repository
	orders     order.Repository
	// placer is set when carts and orders share a Postgres database.
	placer order.Placer
	close  func()
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{Service: "gifty-api", Env: cfg.Env, Level: cfg.LogLevel})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	var db *sql.DB
	if cfg.Store == config.StorePostgres {
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.RunMigrations {
			if err := postgres.Migrate(db); err != nil {
				return err
			}
			log.Info("migrations applied")
		}
	}

	st, err := openStores(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer st.close()

	var cache cart.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()

		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		cache = cart.NewRedisCache(client, cfg.CartCacheTTL)
		log.Info("cart cache enabled", "addr", cfg.RedisAddr)
	}

	userService := user.NewService(st.users, user.NewTokens(cfg.JWTSecret))
	productService := product.NewService(st.products)
	giftBoxService := giftbox.NewService(st.giftBoxes)
	readyBoxService := readybox.NewService(st.readyBoxes, st.products, giftBoxService)
	cartService := cart.NewService(st.carts, cache, st.products, giftBoxService, log)
	orderService := order.NewService(order.Deps{
		Repo:      st.orders,
		Placer:    st.placer,
		Carts:     cartService,
		CartStore: st.carts,
		Products:  st.products,
		Boxes:     giftBoxService,
		Owners:    userService,
		Policy:    order.StatusPolicy(cfg.OrderStatusPolicy),
		Log:       log,
	})
	adminService := admin.NewService(userService, orderService, productService, readyBoxService, giftBoxService)

	if err := os.MkdirAll(cfg.ModelDir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	app := router.New(router.Deps{
		Users:       user.NewHandler(userService),
		Products:    product.NewHandler(productService, cfg.ModelDir),
		GiftBoxes:   giftbox.NewHandler(giftBoxService),
		ReadyBoxes:  readybox.NewHandler(readyBoxService),
		Carts:       cart.NewHandler(cartService),
		Orders:      order.NewHandler(orderService),
		Admin:       admin.NewHandler(adminService),
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		ModelDir:    cfg.ModelDir,
		Log:         log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr, "store", cfg.Store, "cart_store", cfg.CartStore)
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func openStores(ctx context.Context, cfg config.Config, db *sql.DB, log *slog.Logger) (stores, error) {
	var st stores
	closeStores := func() {}
	if cfg.Store == config.StorePostgres {
		orders := order.NewPostgresRepository(db)
		st = stores{
			users:      user.NewPostgresRepository(db),
			products:   product.NewPostgresRepository(db),
			giftBoxes:  giftbox.NewPostgresRepository(db),
			readyBoxes: readybox.NewPostgresRepository(db),
			orders:     orders,
		}
		if cfg.CartStore == config.StorePostgres {
			st.placer = orders
		}
	} else {
		st = stores{
			users:      user.NewInMemoryRepository(nil),
			products:   product.NewInMemoryRepository(nil),
			giftBoxes:  giftbox.NewInMemoryRepository(),
			readyBoxes: readybox.NewInMemoryRepository(),
			orders:     order.NewInMemoryRepository(),
		}
	}

	switch cfg.CartStore {
	case config.StorePostgres:
		st.carts = cart.NewPostgresRepository(db)
	case config.StoreMongo:
		mdb, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return stores{}, err
		}
		closeStores = func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mdb.Client().Disconnect(disconnectCtx); err != nil {
				log.Warn("disconnect mongodb", "error", err)
			}
		}
		repo := cart.NewMongoRepository(mdb)
		if err := repo.CreateIndexes(ctx); err != nil {
			closeStores()
			return stores{}, fmt.Errorf("create cart indexes: %w", err)
		}
		st.carts = repo
		log.Info("carts stored in mongodb", "db", cfg.MongoDB)
	default:
		st.carts = cart.NewInMemoryRepository()
	}
	st.close = closeStores
	return st, nil
}
