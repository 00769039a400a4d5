package readybox

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/product"
)

type Item struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// ReadyBox is a curated box sold as a unit. TotalPrice is derived from the
// catalog whenever the box is written.
type ReadyBox struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	GiftBoxID   *int            `json:"giftBoxId"`
	Items       []Item          `json:"items"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Image       string          `json:"image"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ItemView struct {
	ProductID int              `json:"productId"`
	Product   *product.Product `json:"product"`
	Quantity  int              `json:"quantity"`
}

// View is a ready box with its box type and products resolved.
type View struct {
	ReadyBox
	Items   []ItemView       `json:"items"`
	GiftBox *giftbox.GiftBox `json:"giftBox"`
}

func normalize(rb *ReadyBox) {
	rb.Name = strings.TrimSpace(rb.Name)
	if rb.Items == nil {
		rb.Items = []Item{}
	}
	for i := range rb.Items {
		if rb.Items[i].Quantity == 0 {
			rb.Items[i].Quantity = 1
		}
	}
}

func validate(rb ReadyBox) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(rb.Name) == "" {
		errs["name"] = "name is required"
	}
	if rb.GiftBoxID == nil {
		errs["giftBoxId"] = "giftBoxId is required"
	}
	for _, it := range rb.Items {
		if it.ProductID <= 0 {
			errs["items"] = "every item needs a productId"
			break
		}
		if it.Quantity < 0 {
			errs["items"] = "quantity must be positive"
			break
		}
	}
	return errs
}

func (rb ReadyBox) productIDs() []int {
	ids := make([]int, 0, len(rb.Items))
	for _, it := range rb.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
