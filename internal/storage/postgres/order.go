package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cafefusion/backend/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (owner_id, created_at, status, total_price)
		VALUES ($1, $2, $3, $4) RETURNING id`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, position, menu_item_id, name, unit_price)
		VALUES ($1, $2, $3, $4, $5)`

	orderColumns = `id, owner_id, created_at, status, total_price`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByOwnerSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`

	listOrderItemsSQL = `SELECT order_id, menu_item_id, name, unit_price FROM order_items
		WHERE order_id = ANY($1) ORDER BY order_id, position`

	countOrdersSQL         = `SELECT count(*) FROM orders`
	countOrdersByStatusSQL = `SELECT count(*) FROM orders WHERE status = ANY($1)`

	countByStatusSQL        = `SELECT count(*) FROM orders WHERE status = $1`
	countByStatusInRangeSQL = `SELECT count(*) FROM orders
		WHERE status = $1 AND created_at >= $2 AND created_at < $3`

	existsOrderSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`
	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	lockOrderStatusSQL = `SELECT status FROM orders WHERE id = $1 FOR UPDATE`
	setOrderStatusSQL  = `UPDATE orders SET status = $2 WHERE id = $1`
)

func listOrdersPageSQL(ascending bool) string {
	if ascending {
		return `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2`
	}
	return `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
}

func listOrdersByStatusPageSQL(ascending bool) string {
	if ascending {
		return `SELECT ` + orderColumns + ` FROM orders WHERE status = ANY($1)
			ORDER BY created_at ASC, id ASC LIMIT $2 OFFSET $3`
	}
	return `SELECT ` + orderColumns + ` FROM orders WHERE status = ANY($1)
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
}

var _ order.Store = (*OrderStore)(nil)

// OrderStore implements order.Store backed by PostgreSQL. Line items live in
// order_items and are loaded with a second query per listing.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore returns an OrderStore that uses the given pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Save inserts the order and its line items in one transaction.
func (s *OrderStore) Save(ctx context.Context, o *order.Order) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertOrderSQL,
			o.OwnerID, o.CreatedAt, string(o.Status), o.Total,
		).Scan(&o.ID); err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}

		batch := &pgx.Batch{}
		for i, it := range o.Items {
			batch.Queue(insertOrderItemSQL, o.ID, i, it.MenuItemID, it.Name, it.UnitPrice)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting items of order %d: %w", o.ID, err)
		}
		return nil
	})
}

// FindByID returns one order with its items.
func (s *OrderStore) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	return findOrder(ctx, s.pool, id)
}

func findOrder(ctx context.Context, q querier, id int64) (*order.Order, error) {
	rows, err := q.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	orders := []order.Order{o}
	if err := attachItems(ctx, q, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// FindByOwner returns the user's orders, newest first.
func (s *OrderStore) FindByOwner(ctx context.Context, userID int64) ([]order.Order, error) {
	orders, err := s.collect(ctx, listOrdersByOwnerSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of user %d: %w", userID, err)
	}
	return orders, nil
}

// FindAll returns one page of all orders.
func (s *OrderStore) FindAll(ctx context.Context, page order.PageRequest) (*order.Page, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, countOrdersSQL).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting orders: %w", err)
	}
	orders, err := s.collect(ctx, listOrdersPageSQL(page.Ascending), page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return &order.Page{Orders: orders, Number: page.Number, Size: page.Size, Total: total}, nil
}

// FindByStatusIn returns one page of orders in any of the given statuses.
func (s *OrderStore) FindByStatusIn(ctx context.Context, statuses []order.Status, page order.PageRequest) (*order.Page, error) {
	names := statusNames(statuses)

	var total int64
	if err := s.pool.QueryRow(ctx, countOrdersByStatusSQL, names).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting orders by status: %w", err)
	}
	orders, err := s.collect(ctx, listOrdersByStatusPageSQL(page.Ascending), names, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("listing orders by status: %w", err)
	}
	return &order.Page{Orders: orders, Number: page.Number, Size: page.Size, Total: total}, nil
}

// CountByStatus counts all orders in status.
func (s *OrderStore) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, countByStatusSQL, string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s orders: %w", status, err)
	}
	return n, nil
}

// CountByStatusInRange counts orders in status created in [start, end).
func (s *OrderStore) CountByStatusInRange(ctx context.Context, status order.Status, start, end time.Time) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, countByStatusInRangeSQL, string(status), start, end).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s orders in range: %w", status, err)
	}
	return n, nil
}

// ExistsByID reports whether the order exists.
func (s *OrderStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := s.pool.QueryRow(ctx, existsOrderSQL, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("checking order %d: %w", id, err)
	}
	return ok, nil
}

// DeleteByID removes the order. Its items go with it.
func (s *OrderStore) DeleteByID(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// UpdateStatus locks the order row for the duration of the read-modify-write,
// so concurrent updates and deletes of the same order are serialized.
func (s *OrderStore) UpdateStatus(ctx context.Context, id int64, next func(order.Status) (order.Status, error)) (*order.Order, error) {
	var updated *order.Order
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var current string
		if err := tx.QueryRow(ctx, lockOrderStatusSQL, id).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return order.ErrNotFound
			}
			return fmt.Errorf("locking order %d: %w", id, err)
		}

		to, err := next(order.Status(current))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, setOrderStatusSQL, id, string(to)); err != nil {
			return fmt.Errorf("updating order %d status: %w", id, err)
		}

		updated, err = findOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *OrderStore) collect(ctx context.Context, sql string, args ...any) ([]order.Order, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, err
	}
	if err := attachItems(ctx, s.pool, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

type itemRow struct {
	orderID int64
	item    order.LineItem
}

// attachItems loads line items for orders in position order.
func attachItems(ctx context.Context, q querier, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := q.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing order items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (itemRow, error) {
		var r itemRow
		err := row.Scan(&r.orderID, &r.item.MenuItemID, &r.item.Name, &r.item.UnitPrice)
		return r, err
	})
	if err != nil {
		return fmt.Errorf("scanning order items: %w", err)
	}

	for _, r := range items {
		i := index[r.orderID]
		orders[i].Items = append(orders[i].Items, r.item)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(&o.ID, &o.OwnerID, &o.CreatedAt, &status, &o.Total)
	o.Status = order.Status(status)
	o.CreatedAt = o.CreatedAt.UTC()
	return o, err
}

func statusNames(statuses []order.Status) []string {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return names
}
