package event

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxNameLen        = 150
	maxDescriptionLen = 500
)

// ValidationError describes a rejected event field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Input carries the fields of a new event.
type Input struct {
	Name        string
	Description string
	StartsAt    time.Time
	CoverCharge decimal.Decimal
}

func (in Input) validate(now time.Time) error {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return &ValidationError{Field: "name", Reason: "event name is required"}
	case utf8.RuneCountInString(name) > maxNameLen:
		return &ValidationError{Field: "name", Reason: "event name must be 150 characters or less"}
	case utf8.RuneCountInString(in.Description) > maxDescriptionLen:
		return &ValidationError{Field: "description", Reason: "description must be 500 characters or less"}
	case in.StartsAt.IsZero():
		return &ValidationError{Field: "eventDateTime", Reason: "event date and time are required"}
	case !in.StartsAt.After(now):
		return &ValidationError{Field: "eventDateTime", Reason: "event must be scheduled for a future date and time"}
	case in.CoverCharge.IsNegative():
		return &ValidationError{Field: "coverCharge", Reason: "cover charge must be zero or a positive value"}
	}
	return nil
}

// Service implements event scheduling.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates an event Service. A nil now uses time.Now.
func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// Create validates and stores a new event.
func (s *Service) Create(ctx context.Context, in Input) (*Event, error) {
	if err := in.validate(s.now()); err != nil {
		return nil, err
	}
	e := &Event{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		StartsAt:    in.StartsAt.UTC().Truncate(time.Microsecond),
		CoverCharge: in.CoverCharge,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, errors.Wrap(err, "create event")
	}
	zctx.From(ctx).Info("Event created", zap.Int64("event_id", e.ID), zap.String("name", e.Name))
	return e, nil
}

// Get returns one event or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUpcoming returns events that have not started yet, soonest first.
func (s *Service) ListUpcoming(ctx context.Context) ([]Event, error) {
	events, err := s.repo.ListStartingFrom(ctx, s.now().UTC())
	if err != nil {
		return nil, errors.Wrap(err, "list upcoming events")
	}
	return events, nil
}

// Delete removes an event or returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return errors.Wrapf(err, "delete event %d", id)
	}
	zctx.From(ctx).Info("Event deleted", zap.Int64("event_id", id))
	return nil
}
