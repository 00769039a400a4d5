package giftbox

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultTheme    = "general"
	DefaultMaxItems = 5
	DefaultScale    = 0.05
)

// GiftBox is a box type a customer can pick for a custom box. Its base price
// is added to the order total.
type GiftBox struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Theme     string          `json:"theme"`
	MaxItems  int             `json:"maxItems"`
	BasePrice decimal.Decimal `json:"basePrice"`
	Image     string          `json:"image"`
	ModelPath string          `json:"modelPath"`
	Scale     float64         `json:"scale"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func applyDefaults(b *GiftBox) {
	b.Name = strings.TrimSpace(b.Name)
	if b.Theme == "" {
		b.Theme = DefaultTheme
	}
	if b.MaxItems == 0 {
		b.MaxItems = DefaultMaxItems
	}
	if b.Scale == 0 {
		b.Scale = DefaultScale
	}
	b.BasePrice = b.BasePrice.Round(2)
}

func validate(b GiftBox) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(b.Name) == "" {
		errs["name"] = "name is required"
	}
	if b.MaxItems < 0 {
		errs["maxItems"] = "maxItems must be positive"
	}
	if b.BasePrice.IsNegative() {
		errs["basePrice"] = "basePrice must not be negative"
	}
	if b.Scale < 0 {
		errs["scale"] = "scale must be positive"
	}
	return errs
}
