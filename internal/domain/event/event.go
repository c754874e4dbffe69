// Package event manages scheduled café events such as live music nights.
package event

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("event not found")

// Event is a scheduled happening with an optional cover charge.
type Event struct {
	ID          int64
	Name        string
	Description string
	StartsAt    time.Time
	CoverCharge decimal.Decimal
}

// Repository defines persistence operations for events.
type Repository interface {
	// Create inserts the event and sets its ID.
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	// ListStartingFrom returns events starting at or after t, soonest first.
	ListStartingFrom(ctx context.Context, t time.Time) ([]Event, error)
	Delete(ctx context.Context, id int64) error
}
