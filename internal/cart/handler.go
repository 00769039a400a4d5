package cart

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/user"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router, requireAuth fiber.Handler) {
	g := r.Group("/cart", requireAuth)
	g.Get("", h.getCart)
	g.Post("/add", h.addToCart)
	g.Put("/update", h.updateItem)
	g.Delete("/remove/:productId", h.removeItem)
	g.Put("/giftbox", h.setGiftBox)
	g.Delete("/clear", h.clearCart)
}

type addRequest struct {
	ProductID int  `json:"productId"`
	Quantity  *int `json:"quantity"`
}

type updateRequest struct {
	ProductID int  `json:"productId"`
	Quantity  *int `json:"quantity"`
}

type giftBoxRequest struct {
	GiftBoxID *int `json:"giftBoxId"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	view, err := h.service.View(c.UserContext(), ownerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	qty := 1
	if payload.Quantity != nil {
		qty = *payload.Quantity
	}

	view, err := h.service.Add(c.UserContext(), ownerID, payload.ProductID, qty)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) updateItem(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(updateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	if payload.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "quantity is required"})
	}

	view, err := h.service.Update(c.UserContext(), ownerID, payload.ProductID, *payload.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}

	view, err := h.service.Remove(c.UserContext(), ownerID, productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) setGiftBox(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(giftBoxRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	view, err := h.service.SetGiftBox(c.UserContext(), ownerID, payload.GiftBoxID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.Clear(c.UserContext(), ownerID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Cart not found"})
	case errors.Is(err, ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Item not found in cart"})
	case errors.Is(err, giftbox.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Gift box not found"})
	case errors.Is(err, ErrProductUnavailable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Product is not available"})
	case errors.Is(err, ErrZeroQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrVersionConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Cart was modified, please retry"})
	default:
		return fmt.Errorf("cart: %w", err)
	}
}
