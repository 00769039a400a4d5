package readybox

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/user"
)

type Handler struct {
	service *Service
}

type readyBoxRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	GiftBoxID   *int    `json:"giftBoxId"`
	Items       *[]Item `json:"items"`
	Image       *string `json:"image"`
	IsActive    *bool   `json:"isActive"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router, requireAuth fiber.Handler) {
	g := r.Group("/readyboxes")
	g.Get("", h.getReadyBoxes)
	g.Get("/all", requireAuth, user.RequireAdmin, h.getAllReadyBoxes)
	g.Get("/:id", h.getReadyBox)
	g.Post("", requireAuth, user.RequireAdmin, h.createReadyBox)
	g.Put("/:id", requireAuth, user.RequireAdmin, h.updateReadyBox)
	g.Delete("/:id", requireAuth, user.RequireAdmin, h.deleteReadyBox)
}

func (h *Handler) getReadyBoxes(c *fiber.Ctx) error {
	boxes, err := h.service.List(c.UserContext(), true)
	if err != nil {
		return fmt.Errorf("list ready boxes: %w", err)
	}
	return c.JSON(boxes)
}

func (h *Handler) getAllReadyBoxes(c *fiber.Ctx) error {
	boxes, err := h.service.List(c.UserContext(), false)
	if err != nil {
		return fmt.Errorf("list all ready boxes: %w", err)
	}
	return c.JSON(boxes)
}

func (h *Handler) getReadyBox(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid ready box id"})
	}
	rb, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rb)
}

func (h *Handler) createReadyBox(c *fiber.Ctx) error {
	payload := new(readyBoxRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	rb := ReadyBox{IsActive: true}
	payload.applyTo(&rb)
	if ves := validate(rb); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "validation failed", "errors": ves})
	}

	created, err := h.service.Create(c.UserContext(), rb)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateReadyBox(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid ready box id"})
	}
	payload := new(readyBoxRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	existing, err := h.service.GetRaw(c.UserContext(), id)
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

func (h *Handler) deleteReadyBox(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid ready box id"})
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ready box deleted"})
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Ready box not found"})
	case errors.Is(err, giftbox.ErrNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  map[string]string{"giftBoxId": "gift box not found"},
		})
	default:
		return fmt.Errorf("ready box: %w", err)
	}
}

func (r *readyBoxRequest) applyTo(rb *ReadyBox) {
	if r.Name != nil {
		rb.Name = *r.Name
	}
	if r.Description != nil {
		rb.Description = *r.Description
	}
	if r.GiftBoxID != nil {
		rb.GiftBoxID = r.GiftBoxID
	}
	if r.Items != nil {
		rb.Items = *r.Items
	}
	if r.Image != nil {
		rb.Image = *r.Image
	}
	if r.IsActive != nil {
		rb.IsActive = *r.IsActive
	}
}
