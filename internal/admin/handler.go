package admin

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/gifty-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router, requireAuth fiber.Handler) {
	g := r.Group("/admin", requireAuth, user.RequireAdmin)
	g.Get("/stats", h.getStats)
}

func (h *Handler) getStats(c *fiber.Ctx) error {
	st, err := h.service.Stats(c.UserContext())
	if err != nil {
		return fmt.Errorf("admin stats: %w", err)
	}
	return c.JSON(st)
}
