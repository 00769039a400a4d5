package product

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/gifty-backend/internal/user"
)

const (
	MaxModelSize    = 50 << 20
	ModelPublicPath = "/uploads/models"
)

type Handler struct {
	service  *Service
	modelDir string
}

// productRequest carries create and update payloads. Nil fields are left
// unchanged on update.
type productRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image"`
	Category    *string          `json:"category"`
	Stock       *int             `json:"stock"`
	IsActive    *bool            `json:"isActive"`
}

func NewHandler(service *Service, modelDir string) *Handler {
	return &Handler{service: service, modelDir: modelDir}
}

func (h *Handler) RegisterRoutes(r fiber.Router, requireAuth fiber.Handler) {
	g := r.Group("/products")
	g.Get("", h.getProducts)
	g.Get("/all", requireAuth, user.RequireAdmin, h.getAllProducts)
	g.Post("/upload", requireAuth, user.RequireAdmin, h.uploadModel)
	g.Get("/:id", h.getProduct)
	g.Post("", requireAuth, user.RequireAdmin, h.createProduct)
	g.Put("/:id", requireAuth, user.RequireAdmin, h.updateProduct)
	g.Patch("/:id/toggle", requireAuth, user.RequireAdmin, h.toggleProduct)
	g.Delete("/:id", requireAuth, user.RequireAdmin, h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	f := Filter{
		Category: c.Query("category"),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	var err error
	if f.MinPrice, err = decimalQuery(c, "minPrice"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if f.MaxPrice, err = decimalQuery(c, "maxPrice"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	products, err := h.service.List(c.UserContext(), f)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	return c.JSON(products)
}

func (h *Handler) getAllProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext(), Filter{IncludeInactive: true})
	if err != nil {
		return fmt.Errorf("list all products: %w", err)
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	p := Product{IsActive: true}
	payload.applyTo(&p)
	if ves := Validate(p); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "validation failed", "errors": ves})
	}

	created, err := h.service.Create(c.UserContext(), p)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	existing, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	payload.applyTo(&existing)
	if ves := Validate(existing); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "validation failed", "errors": ves})
	}

	updated, err := h.service.Update(c.UserContext(), id, existing)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) toggleProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	p, err := h.service.ToggleActive(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// uploadModel stores a .glb file from the "model" form field and returns its
// public path.
func (h *Handler) uploadModel(c *fiber.Ctx) error {
	file, err := c.FormFile("model")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "model file is required"})
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".glb") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Only .glb files are allowed"})
	}
	if file.Size > MaxModelSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"message": "model file exceeds 50MB"})
	}

	if err := os.MkdirAll(h.modelDir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	base := unsafeFileChars.ReplaceAllString(strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename)), "_")
	name := fmt.Sprintf("%d-%s.glb", time.Now().UnixMilli(), base)
	if err := c.SaveFile(file, filepath.Join(h.modelDir, name)); err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Model uploaded",
		"path":    ModelPublicPath + "/" + name,
	})
}

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
	}
	return err
}

func (r *productRequest) applyTo(p *Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Image != nil {
		p.Image = *r.Image
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}

func decimalQuery(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &d, nil
}
