package router

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/gifty-backend/internal/admin"
	"github.com/wichananm65/gifty-backend/internal/cart"
	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/order"
	"github.com/wichananm65/gifty-backend/internal/product"
	"github.com/wichananm65/gifty-backend/internal/readybox"
	"github.com/wichananm65/gifty-backend/internal/user"
)

// Uploaded 3D models can reach 50MB; leave room for the multipart envelope.
const bodyLimit = 55 * 1024 * 1024

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Deps carries the handlers and settings the app is built from. RequireAuth
// defaults to the JWT middleware for JWTSecret.
type Deps struct {
	Users      *user.Handler
	Products   *product.Handler
	GiftBoxes  *giftbox.Handler
	ReadyBoxes *readybox.Handler
	Carts      *cart.Handler
	Orders     *order.Handler
	Admin      *admin.Handler

	JWTSecret   string
	RequireAuth fiber.Handler
	CORSOrigins string
	ModelDir    string
	Log         *slog.Logger
}

func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "gifty-api",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(d.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))
	app.Use(accessLog(d.Log))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Gifty API is running"})
	})
	if d.ModelDir != "" {
		app.Static(product.ModelPublicPath, d.ModelDir)
	}

	requireAuth := d.RequireAuth
	if requireAuth == nil {
		requireAuth = user.NewAuthMiddleware(d.JWTSecret)
	}

	api := app.Group("/api")
	if d.Users != nil {
		d.Users.RegisterRoutes(api, requireAuth)
	}
	if d.Products != nil {
		d.Products.RegisterRoutes(api, requireAuth)
	}
	if d.GiftBoxes != nil {
		d.GiftBoxes.RegisterRoutes(api, requireAuth)
	}
	if d.ReadyBoxes != nil {
		d.ReadyBoxes.RegisterRoutes(api, requireAuth)
	}
	if d.Carts != nil {
		d.Carts.RegisterRoutes(api, requireAuth)
	}
	if d.Orders != nil {
		d.Orders.RegisterRoutes(api, requireAuth)
	}
	if d.Admin != nil {
		d.Admin.RegisterRoutes(api, requireAuth)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Route not found"})
	})

	return app
}

// errorHandler answers errors that escaped the handlers. Fiber errors keep
// their status; anything else is logged and hidden behind a generic 500.
func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
		}

		log.ErrorContext(c.UserContext(), "request failed",
			"request_id", requestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}

func accessLog(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Resolve the status now so the log line matches the response.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		log.InfoContext(c.UserContext(), "http request",
			"request_id", requestID(c),
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
