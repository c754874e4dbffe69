package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// MaxOrderItems caps the number of line items in a single order.
const MaxOrderItems = 100

var (
	// ErrEmptyItems is returned when an order is placed without any items.
	ErrEmptyItems = errors.New("order must contain at least one menu item")
	// ErrTooManyItems is returned when an order exceeds MaxOrderItems.
	ErrTooManyItems = errors.New("order contains too many menu items")
	// ErrEmptyStatuses is returned when a status filter is empty.
	ErrEmptyStatuses = errors.New("at least one status is required")
	// ErrNotFound is returned by a Store when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
)

// ItemNotFoundError indicates a referenced menu item could not be resolved.
// No order is persisted when it is returned.
type ItemNotFoundError struct {
	ItemID int64
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item %d not found", e.ItemID)
}

// OrderNotFoundError indicates an operation targeted a nonexistent order.
type OrderNotFoundError struct {
	OrderID int64
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order %d not found", e.OrderID)
}

// InvalidStatusTransitionError indicates a status change the workflow forbids.
type InvalidStatusTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}
