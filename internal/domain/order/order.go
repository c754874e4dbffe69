package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a customer order with its priced line-item snapshot.
// Only Status changes after creation.
type Order struct {
	ID        int64
	OwnerID   int64
	CreatedAt time.Time
	Status    Status
	Total     decimal.Decimal
	Items     []LineItem
}

// ItemNames returns the snapshot names in order.
func (o *Order) ItemNames() []string {
	names := make([]string, len(o.Items))
	for i, it := range o.Items {
		names[i] = it.Name
	}
	return names
}

// LineItem is a menu item captured at order time. It does not follow later
// menu edits.
type LineItem struct {
	MenuItemID int64
	Name       string
	UnitPrice  decimal.Decimal
}

const (
	// DefaultPageSize is used when a page request carries no size.
	DefaultPageSize = 20
	// MaxPageSize caps the size of a single page.
	MaxPageSize = 100
)

// PageRequest selects a window of orders sorted by creation time.
type PageRequest struct {
	// Number is zero-based.
	Number    int
	Size      int
	Ascending bool
}

// Normalize clamps the request into a usable range.
func (p PageRequest) Normalize() PageRequest {
	if p.Number < 0 {
		p.Number = 0
	}
	switch {
	case p.Size <= 0:
		p.Size = DefaultPageSize
	case p.Size > MaxPageSize:
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return p.Number * p.Size
}

// Page is one window of a paginated order listing.
type Page struct {
	Orders []Order
	Number int
	Size   int
	Total  int64
}

// TotalPages returns the number of pages needed to cover Total.
func (p *Page) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// StatusChange describes a committed status update.
type StatusChange struct {
	OrderID   int64
	OwnerID   int64
	From      Status
	To        Status
	ChangedAt time.Time
	Override  bool
}

// Notifier is told about every committed status change.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, change StatusChange) error
}

// Store persists orders. Missing orders are reported with ErrNotFound.
type Store interface {
	// Save inserts a new order and sets its ID.
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	// FindByOwner returns the user's orders, newest first.
	FindByOwner(ctx context.Context, userID int64) ([]Order, error)
	FindAll(ctx context.Context, page PageRequest) (*Page, error)
	FindByStatusIn(ctx context.Context, statuses []Status, page PageRequest) (*Page, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
	// CountByStatusInRange counts orders created in [start, end).
	CountByStatusInRange(ctx context.Context, status Status, start, end time.Time) (int64, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
	// UpdateStatus atomically loads the order's current status, passes it to
	// next and stores the returned status. Nothing is written when next
	// fails. Concurrent updates and deletes of the same order serialize.
	UpdateStatus(ctx context.Context, id int64, next func(current Status) (Status, error)) (*Order, error)
}
