package order

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/gifty-backend/internal/user"
)

// HeaderIdempotencyKey deduplicates retried checkouts per user.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 200

// Handler delegates order operations to the order service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router, requireAuth fiber.Handler) {
	g := r.Group("/orders", requireAuth)
	g.Post("", h.createOrder)
	g.Get("", h.getMyOrders)
	g.Get("/all", user.RequireAdmin, h.getAllOrders)
	g.Get("/:id", user.RequireAdmin, h.getOrder)
	g.Put("/:id/status", user.RequireAdmin, h.updateStatus)
}

type createOrderRequest struct {
	Delivery Delivery `json:"delivery"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(createOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
	if len(key) > maxIdempotencyKeyLen {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Idempotency-Key is too long"})
	}

	o, created, err := h.service.PlaceOrder(c.UserContext(), ownerID, payload.Delivery, key)
	if err != nil {
		return writeError(c, err)
	}
	if !created {
		return c.JSON(o)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *Handler) getMyOrders(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orders, err := h.service.ListOwn(c.UserContext(), ownerID)
	if err != nil {
		return fmt.Errorf("list own orders: %w", err)
	}
	return c.JSON(orders)
}

func (h *Handler) getAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}
	o, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}
	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	o, err := h.service.TransitionStatus(c.UserContext(), id, payload.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func writeError(c *fiber.Ctx, err error) error {
	var (
		invalidDelivery *InvalidDeliveryInfoError
		unavailable     *ProductUnavailableError
		illegal         *IllegalTransitionError
	)
	switch {
	case errors.Is(err, ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cart is empty"})
	case errors.As(err, &invalidDelivery):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Delivery info required: name, phone, city, address",
			"fields":  invalidDelivery.Fields,
		})
	case errors.As(err, &unavailable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":   unavailable.Error(),
			"productId": unavailable.ProductID,
		})
	case errors.Is(err, ErrCartChanged):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Cart changed during checkout, please review it and retry"})
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
	case errors.Is(err, ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid status",
			"allowed": Statuses,
		})
	case errors.As(err, &illegal):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": illegal.Error()})
	default:
		return fmt.Errorf("order: %w", err)
	}
}
