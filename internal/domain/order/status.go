package order

import (
	"strings"

	"github.com/go-faster/errors"
)

// Status is the lifecycle state of an order.
type Status string

const (
	// StatusPendingApproval is the initial state: placed by a customer, awaiting staff approval.
	StatusPendingApproval Status = "PENDING_APPROVAL"
	// StatusConfirmed means staff accepted the order.
	StatusConfirmed Status = "CONFIRMED"
	// StatusInProgress means the kitchen is preparing the order.
	StatusInProgress Status = "IN_PROGRESS"
	// StatusReadyForPickup means the order is waiting at the counter.
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
	// StatusCompleted is terminal: the customer picked the order up.
	StatusCompleted Status = "COMPLETED"
	// StatusCancelled is terminal: the order will not be fulfilled.
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{
	StatusPendingApproval,
	StatusConfirmed,
	StatusInProgress,
	StatusReadyForPickup,
	StatusCompleted,
	StatusCancelled,
}

// KitchenStatuses are the statuses shown on the kitchen queue.
var KitchenStatuses = []Status{StatusInProgress, StatusReadyForPickup}

// transitions is the legal state graph. Terminal states have no entry.
var transitions = map[Status][]Status{
	StatusPendingApproval: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:       {StatusInProgress, StatusCancelled},
	StatusInProgress:      {StatusReadyForPickup},
	StatusReadyForPickup:  {StatusCompleted},
}

// ErrUnknownStatus is returned by ParseStatus for values outside the enum.
var ErrUnknownStatus = errors.New("unknown order status")

// ParseStatus converts s into a Status. Matching is case-insensitive.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", errors.Wrapf(ErrUnknownStatus, "%q", s)
	}
	return st, nil
}

func (s Status) String() string { return string(s) }

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusConfirmed, StatusInProgress,
		StatusReadyForPickup, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether moving an order from one status to another
// is allowed by the workflow. Self-loops and moves out of terminal states
// are never allowed.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
