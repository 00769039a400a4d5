package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/product"
	"github.com/wichananm65/gifty-backend/internal/readybox"
	"github.com/wichananm65/gifty-backend/internal/user"
)

type seedProduct struct {
	name, description, price, category string
	stock                              int
}

var catalog = []seedProduct{
	{"Graduation Cap Gift Box", "Gift box with a graduation cap theme for new graduates.", "49.99", product.CategoryGraduation, 25},
	{"Scholar's Pen Set", "Fountain pen set in a velvet-lined box.", "34.99", product.CategoryGraduation, 40},
	{"Future is Bright Hamper", "Motivational book, chocolates and a personalized keychain.", "59.99", product.CategoryGraduation, 15},
	{"Diploma Frame Deluxe", "Wooden diploma frame with gold accents.", "39.99", product.CategoryGraduation, 30},

	{"Luxury Couple's Spa Set", "Candles, bath bombs and essential oils for the newlyweds.", "89.99", product.CategoryWedding, 20},
	{"Crystal Wine Glass Pair", "Hand-blown crystal glasses engraved with initials.", "74.99", product.CategoryWedding, 18},
	{"Love Story Photo Album", "Leather-bound photo album with 100 archival pages.", "54.99", product.CategoryWedding, 22},
	{"Golden Anniversary Clock", "Mantel clock with a golden finish.", "119.99", product.CategoryWedding, 10},

	{"Birthday Surprise Box", "Confetti, party hat, chocolates and a surprise toy.", "29.99", product.CategoryBirthday, 50},
	{"Gourmet Cake Hamper", "Mini cakes, macarons and a birthday candle set.", "44.99", product.CategoryBirthday, 35},
	{"Personalized Star Map", "Framed star map of the night sky on their birth date.", "64.99", product.CategoryBirthday, 20},
	{"Retro Polaroid Gift Kit", "Instant camera, film pack and a scrapbook.", "79.99", product.CategoryBirthday, 12},

	{"Cozy Comfort Blanket Set", "Fleece blanket with matching cushion in a gift bag.", "42.99", product.CategoryGeneral, 30},
	{"Aromatherapy Candle Trio", "Three soy candles: lavender, vanilla and rosemary.", "27.99", product.CategoryGeneral, 45},
	{"Succulent Garden Kit", "Mini succulent garden with ceramic pots and soil mix.", "35.99", product.CategoryGeneral, 28},
	{"Premium Tea Collection", "12 teas from around the world in a wooden box.", "38.99", product.CategoryGeneral, 33},
	{"Handcrafted Jewelry Box", "Walnut jewelry box with velvet interior.", "56.99", product.CategoryGeneral, 16},
	{"Luxury Chocolate Assortment", "24 artisan chocolates in a gift box.", "49.99", product.CategoryGeneral, 40},
}

var boxTypes = []giftbox.GiftBox{
	{Name: "Small Box", Theme: "minimal", MaxItems: 3, BasePrice: decimal.NewFromInt(5)},
	{Name: "Medium Box", Theme: "classic", MaxItems: 5, BasePrice: decimal.NewFromInt(10)},
	{Name: "Large Box", Theme: "luxury", MaxItems: 8, BasePrice: decimal.NewFromInt(18)},
	{Name: "Premium Box", Theme: "premium", MaxItems: 12, BasePrice: decimal.NewFromInt(30)},
	{Name: "Kids Box", Theme: "fun", MaxItems: 5, BasePrice: decimal.NewFromInt(8)},
	{Name: "Romantic Box", Theme: "romantic", MaxItems: 6, BasePrice: decimal.NewFromInt(15)},
}

type seeder struct {
	users      *user.Service
	products   *product.Service
	giftBoxes  *giftbox.Service
	readyBoxes *readybox.Service
	log        *slog.Logger
}

type admin struct {
	name, email, password string
}

// run fills an empty catalog. A catalog that already has products is left
// alone so the seeder can run on every deploy.
func (s seeder) run(ctx context.Context, a admin) error {
	if a.email != "" {
		if err := s.ensureAdmin(ctx, a); err != nil {
			return err
		}
	}

	n, err := s.products.Count(ctx, false)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		s.log.Info("catalog not empty, skipping", "products", n)
		return nil
	}

	products := make([]product.Product, 0, len(catalog))
	for _, sp := range catalog {
		p, err := s.products.Create(ctx, product.Product{
			Name:        sp.name,
			Description: sp.description,
			Price:       decimal.RequireFromString(sp.price),
			Category:    sp.category,
			Stock:       sp.stock,
			IsActive:    true,
		})
		if err != nil {
			return fmt.Errorf("create product %q: %w", sp.name, err)
		}
		products = append(products, p)
	}

	boxes := make([]giftbox.GiftBox, 0, len(boxTypes))
	for _, b := range boxTypes {
		created, err := s.giftBoxes.Create(ctx, b)
		if err != nil {
			return fmt.Errorf("create gift box %q: %w", b.Name, err)
		}
		boxes = append(boxes, created)
	}

	for _, rb := range readyBoxes(products, boxes) {
		if _, err := s.readyBoxes.Create(ctx, rb); err != nil {
			return fmt.Errorf("create ready box %q: %w", rb.Name, err)
		}
	}

	s.log.Info("catalog seeded", "products", len(products), "gift_boxes", len(boxes))
	return nil
}

func (s seeder) ensureAdmin(ctx context.Context, a admin) error {
	_, err := s.users.Create(ctx, user.User{
		Name:     a.name,
		Email:    a.email,
		Password: a.password,
		Role:     user.RoleAdmin,
	})
	switch {
	case err == nil:
		s.log.Info("admin created", "email", a.email)
	case errors.Is(err, user.ErrEmailExists):
		s.log.Info("admin already exists", "email", a.email)
	default:
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func readyBoxes(products []product.Product, boxes []giftbox.GiftBox) []readybox.ReadyBox {
	item := func(i, qty int) readybox.Item {
		return readybox.Item{ProductID: products[i].ID, Quantity: qty}
	}
	boxID := func(i int) *int { return &boxes[i].ID }

	return []readybox.ReadyBox{
		{
			Name:        "Self-Care Starter",
			Description: "Self-care essentials for a relaxing evening.",
			GiftBoxID:   boxID(1),
			Items:       []readybox.Item{item(12, 1), item(13, 1), item(15, 1)},
			IsActive:    true,
		},
		{
			Name:        "Luxury Pampering Set",
			Description: "Premium products in a luxury box.",
			GiftBoxID:   boxID(2),
			Items:       []readybox.Item{item(4, 1), item(17, 2), item(13, 1)},
			IsActive:    true,
		},
		{
			Name:        "Surprise Fun Pack",
			Description: "A cheerful mix of goodies for birthdays.",
			GiftBoxID:   boxID(4),
			Items:       []readybox.Item{item(8, 1), item(9, 1)},
			IsActive:    true,
		},
	}
}
