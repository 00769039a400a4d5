package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/gifty-backend/internal/giftbox"
	"github.com/wichananm65/gifty-backend/internal/user"
)

const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
)

// Statuses lists the order statuses in fulfilment order.
var Statuses = []string{StatusPending, StatusPreparing, StatusShipped, StatusDelivered}

func statusRank(s string) (int, bool) {
	for i, status := range Statuses {
		if status == s {
			return i, true
		}
	}
	return 0, false
}

// LineItem is a product frozen at checkout. It does not follow later
// catalog changes.
type LineItem struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Delivery struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Address string `json:"address"`
	Date    string `json:"date,omitempty"`
}

// Order is created once per checkout. Only Status changes afterwards.
type Order struct {
	ID             int             `json:"id"`
	OwnerID        int             `json:"ownerId"`
	Items          []LineItem      `json:"items"`
	GiftBoxID      *int            `json:"giftBoxId"`
	Delivery       Delivery        `json:"delivery"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	Status         string          `json:"status"`
	IdempotencyKey string          `json:"-"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// AdminView is an order with its owner, and on detail reads its box,
// resolved for the back office.
type AdminView struct {
	Order
	Owner   *user.Summary    `json:"owner"`
	GiftBox *giftbox.GiftBox `json:"giftBox,omitempty"`
}
