package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("order not found")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidStatus  = errors.New("invalid order status")
	ErrCartChanged    = errors.New("cart changed during checkout")
	ErrDuplicateOrder = errors.New("order with this idempotency key already exists")
)

// InvalidDeliveryInfoError lists every required delivery field that was
// missing or blank.
type InvalidDeliveryInfoError struct {
	Fields []string
}

func (e *InvalidDeliveryInfoError) Error() string {
	return "delivery info required: " + strings.Join(e.Fields, ", ")
}

// ProductUnavailableError names a cart product that no longer exists or
// has been deactivated.
type ProductUnavailableError struct {
	ProductID int
	Name      string
}

func (e *ProductUnavailableError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("product %d (%s) is no longer available", e.ProductID, e.Name)
	}
	return fmt.Sprintf("product %d is no longer available", e.ProductID)
}

type IllegalTransitionError struct {
	From, To string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s back to %s", e.From, e.To)
}
