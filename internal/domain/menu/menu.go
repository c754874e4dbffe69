// Package menu holds the café catalog.
package menu

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested menu item does not exist.
var ErrNotFound = errors.New("menu item not found")

// Item is a dish or drink offered by the café.
type Item struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
}

// Repository defines persistence operations for the catalog.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	// Create inserts the item and sets its ID.
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
}

// Lookup resolves catalog items by id. Missing items yield ErrNotFound.
type Lookup interface {
	Resolve(ctx context.Context, id int64) (*Item, error)
}
