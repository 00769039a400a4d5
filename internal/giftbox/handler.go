package giftbox

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/gifty-backend/internal/user"
)

type Handler struct {
	service *Service
}

type giftBoxRequest struct {
	Name      *string          `json:"name"`
	Theme     *string          `json:"theme"`
	MaxItems  *int             `json:"maxItems"`
	BasePrice *decimal.Decimal `json:"basePrice"`
	Image     *string          `json:"image"`
	ModelPath *string          `json:"modelPath"`
	Scale     *float64         `json:"scale"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router, requireAuth fiber.Handler) {
	g := r.Group("/giftboxes")
	g.Get("", h.getGiftBoxes)
	g.Get("/:id", h.getGiftBox)
	g.Post("", requireAuth, user.RequireAdmin, h.createGiftBox)
	g.Put("/:id", requireAuth, user.RequireAdmin, h.updateGiftBox)
	g.Delete("/:id", requireAuth, user.RequireAdmin, h.deleteGiftBox)
}

func (h *Handler) getGiftBoxes(c *fiber.Ctx) error {
	boxes, err := h.service.List(c.UserContext())
	if err != nil {
		return fmt.Errorf("list gift boxes: %w", err)
	}
	return c.JSON(boxes)
}

func (h *Handler) getGiftBox(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid gift box id"})
	}
	b, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(b)
}

func (h *Handler) createGiftBox(c *fiber.Ctx) error {
	payload := new(giftBoxRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var b GiftBox
	payload.applyTo(&b)
	if ves := validate(b); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "validation failed", "errors": ves})
	}

	created, err := h.service.Create(c.UserContext(), b)
	if err != nil {
		return fmt.Errorf("create gift box: %w", err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateGiftBox(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid gift box id"})
	}
	payload := new(giftBoxRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	existing, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	payload.applyTo(&existing)
	if ves := validate(existing); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "validation failed", "errors": ves})
	}

	updated, err := h.service.Update(c.UserContext(), id, existing)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteGiftBox(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid gift box id"})
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Gift box deleted"})
}

func writeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Gift box not found"})
	}
	return err
}

func (r *giftBoxRequest) applyTo(b *GiftBox) {
	if r.Name != nil {
		b.Name = *r.Name
	}
	if r.Theme != nil {
		b.Theme = *r.Theme
	}
	if r.MaxItems != nil {
		b.MaxItems = *r.MaxItems
	}
	if r.BasePrice != nil {
		b.BasePrice = *r.BasePrice
	}
	if r.Image != nil {
		b.Image = *r.Image
	}
	if r.ModelPath != nil {
		b.ModelPath = *r.ModelPath
	}
	if r.Scale != nil {
		b.Scale = *r.Scale
	}
}
