package menu

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 255
)

var _ Lookup = (*Service)(nil)

// ValidationError describes a rejected menu item field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Input carries the editable fields of a menu item.
type Input struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

func (in Input) validate() error {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return &ValidationError{Field: "name", Reason: "menu item name is required"}
	case utf8.RuneCountInString(name) > maxNameLen:
		return &ValidationError{Field: "name", Reason: "menu item name must be 100 characters or less"}
	case utf8.RuneCountInString(in.Description) > maxDescriptionLen:
		return &ValidationError{Field: "description", Reason: "description must be 255 characters or less"}
	case !in.Price.IsPositive():
		return &ValidationError{Field: "price", Reason: "price must be a positive value"}
	}
	return nil
}

// Service implements catalog management on top of a Repository.
type Service struct {
	repo Repository
}

// NewService creates a menu Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list menu items")
	}
	return items, nil
}

// Get returns one item or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

// Resolve implements Lookup.
func (s *Service) Resolve(ctx context.Context, id int64) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a new item.
func (s *Service) Create(ctx context.Context, in Input) (*Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	item := &Item{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, errors.Wrap(err, "create menu item")
	}
	return item, nil
}

// Update replaces the editable fields of an existing item. Orders placed
// earlier keep their own snapshot.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	item := &Item{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
	}
	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "update menu item %d", id)
	}
	return item, nil
}

// Delete removes an item or returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return errors.Wrapf(err, "delete menu item %d", id)
	}
	return nil
}
