package menu

import (
	"context"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	items  map[int64]Item
	nextID int64
	err    error
}

func newMockRepo(items ...Item) *mockRepo {
	m := &mockRepo{items: make(map[int64]Item)}
	for _, it := range items {
		m.items[it.ID] = it
		m.nextID = max(m.nextID, it.ID)
	}
	return m
}

func (m *mockRepo) List(context.Context) ([]Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Item, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &it, nil
}

func (m *mockRepo) Create(_ context.Context, item *Item) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	item.ID = m.nextID
	m.items[item.ID] = *item
	return nil
}

func (m *mockRepo) Update(_ context.Context, item *Item) error {
	if _, ok := m.items[item.ID]; !ok {
		return ErrNotFound
	}
	m.items[item.ID] = *item
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func TestService_Create(t *testing.T) {
	svc := NewService(newMockRepo())

	item, err := svc.Create(context.Background(), Input{
		Name:        "  Cortado ",
		Description: "Espresso cut with warm milk",
		Price:       decimal.RequireFromString("3.20"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.ID)
	assert.Equal(t, "Cortado", item.Name)

	got, err := svc.Resolve(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Name, got.Name)
	assert.True(t, item.Price.Equal(got.Price))
}

func TestService_CreateValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	price := decimal.RequireFromString("1.00")

	for _, tt := range []struct {
		name  string
		in    Input
		field string
	}{
		{"EmptyName", Input{Name: "  ", Price: price}, "name"},
		{"LongName", Input{Name: strings.Repeat("a", 101), Price: price}, "name"},
		{"LongDescription", Input{Name: "Tea", Description: strings.Repeat("d", 256), Price: price}, "description"},
		{"ZeroPrice", Input{Name: "Tea"}, "price"},
		{"NegativePrice", Input{Name: "Tea", Price: decimal.RequireFromString("-0.01")}, "price"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestService_Update(t *testing.T) {
	repo := newMockRepo(Item{ID: 4, Name: "Mocha", Price: decimal.RequireFromString("4.00")})
	svc := NewService(repo)

	item, err := svc.Update(context.Background(), 4, Input{Name: "Mocha", Price: decimal.RequireFromString("4.50")})
	require.NoError(t, err)
	assert.Equal(t, "4.5", item.Price.String())

	_, err = svc.Update(context.Background(), 5, Input{Name: "Chai", Price: decimal.RequireFromString("3.00")})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	repo := newMockRepo(Item{ID: 1, Name: "Scone", Price: decimal.RequireFromString("2.00")})
	svc := NewService(repo)

	require.NoError(t, svc.Delete(context.Background(), 1))
	require.ErrorIs(t, svc.Delete(context.Background(), 1), ErrNotFound)

	_, err := svc.Get(context.Background(), 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListError(t *testing.T) {
	repo := newMockRepo()
	repo.err = errors.New("conn refused")

	_, err := NewService(repo).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list menu items")
}
