package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryGraduation = "graduation"
	CategoryWedding    = "wedding"
	CategoryBirthday   = "birthday"
	CategoryGeneral    = "general"
)

// AllowedCategories contains the supported product categories.
var AllowedCategories = []string{
	CategoryGraduation,
	CategoryWedding,
	CategoryBirthday,
	CategoryGeneral,
}

// LowStockThreshold is the stock level at or below which an active product
// is reported on the admin dashboard.
const LowStockThreshold = 5

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Filter narrows List. Zero values mean "no constraint"; inactive products
// are skipped unless IncludeInactive is set.
type Filter struct {
	Category        string
	Search          string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	IncludeInactive bool
}

func isAllowedCategory(c string) bool {
	for _, allowed := range AllowedCategories {
		if c == allowed {
			return true
		}
	}
	return false
}
