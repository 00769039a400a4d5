package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/product"
)

// Item is a product reference and a quantity. Quantity is always >= 1 once
// persisted; prices are resolved live, never stored here.
type Item struct {
	ProductID int `json:"productId" bson:"product_id"`
	Quantity  int `json:"quantity" bson:"quantity"`
}

// Cart is the single mutable cart of one owner. Version increases on every
// successful save and guards conditional writes.
type Cart struct {
	OwnerID   int       `json:"ownerId" bson:"owner_id"`
	Items     []Item    `json:"items" bson:"items"`
	GiftBoxID *int      `json:"giftBoxId" bson:"gift_box_id"`
	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// ItemView is a cart line with the live product attached. Product is nil
// when the product no longer exists.
type ItemView struct {
	ProductID int              `json:"productId"`
	Product   *product.Product `json:"product"`
	Quantity  int              `json:"quantity"`
}

type View struct {
	Items          []ItemView       `json:"items"`
	GiftBox        *giftbox.GiftBox `json:"giftBox"`
	Version        int64            `json:"version"`
	EstimatedTotal decimal.Decimal  `json:"estimatedTotal"`
}

func emptyView() View {
	return View{Items: []ItemView{}, EstimatedTotal: decimal.Zero}
}

// add changes the quantity of productID by delta. A result <= 0 removes the
// line. Reports false when delta is negative and the product is not in the
// cart.
func (c *Cart) add(productID, delta int) bool {
	for i, it := range c.Items {
		if it.ProductID == productID {
			if q := it.Quantity + delta; q > 0 {
				c.Items[i].Quantity = q
			} else {
				c.remove(productID)
			}
			return true
		}
	}
	if delta <= 0 {
		return false
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: delta})
	return true
}

func (c *Cart) setQuantity(productID, qty int) bool {
	for i, it := range c.Items {
		if it.ProductID == productID {
			if qty <= 0 {
				c.remove(productID)
			} else {
				c.Items[i].Quantity = qty
			}
			return true
		}
	}
	return false
}

func (c *Cart) remove(productID int) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

func (c Cart) clone() Cart {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	if c.GiftBoxID != nil {
		id := *c.GiftBoxID
		c.GiftBoxID = &id
	}
	return c
}

func (c Cart) productIDs() []int {
	ids := make([]int, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
