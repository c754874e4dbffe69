package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cafefusion/backend/internal/domain/menu"
)

const (
	listMenuItemsSQL   = `SELECT id, name, description, price FROM menu_items ORDER BY id`
	getMenuItemByIDSQL = `SELECT id, name, description, price FROM menu_items WHERE id = $1`
	insertMenuItemSQL  = `INSERT INTO menu_items (name, description, price) VALUES ($1, $2, $3) RETURNING id`
	updateMenuItemSQL  = `UPDATE menu_items SET name = $2, description = $3, price = $4 WHERE id = $1`
	deleteMenuItemSQL  = `DELETE FROM menu_items WHERE id = $1`
)

var _ menu.Repository = (*MenuRepository)(nil)

// MenuRepository implements menu.Repository backed by PostgreSQL.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

// List returns the catalog ordered by ID.
func (r *MenuRepository) List(ctx context.Context) ([]menu.Item, error) {
	rows, err := r.pool.Query(ctx, listMenuItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

// GetByID returns a single menu item.
func (r *MenuRepository) GetByID(ctx context.Context, id int64) (*menu.Item, error) {
	rows, err := r.pool.Query(ctx, getMenuItemByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting menu item %d: %w", id, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanMenuItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menu.ErrNotFound
		}
		return nil, fmt.Errorf("getting menu item %d: %w", id, err)
	}
	return &it, nil
}

// Create inserts item and sets its ID.
func (r *MenuRepository) Create(ctx context.Context, item *menu.Item) error {
	if err := r.pool.QueryRow(ctx, insertMenuItemSQL,
		item.Name, item.Description, item.Price,
	).Scan(&item.ID); err != nil {
		return fmt.Errorf("inserting menu item: %w", err)
	}
	return nil
}

// Update overwrites an existing item.
func (r *MenuRepository) Update(ctx context.Context, item *menu.Item) error {
	tag, err := r.pool.Exec(ctx, updateMenuItemSQL, item.ID, item.Name, item.Description, item.Price)
	if err != nil {
		return fmt.Errorf("updating menu item %d: %w", item.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

// Delete removes an item. Existing orders keep their snapshots.
func (r *MenuRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteMenuItemSQL, id)
	if err != nil {
		return fmt.Errorf("deleting menu item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

func scanMenuItem(row pgx.CollectableRow) (menu.Item, error) {
	var it menu.Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price)
	return it, err
}
