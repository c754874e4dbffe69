package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cafefusion/backend/internal/domain/event"
)

const (
	insertEventSQL = `INSERT INTO events (name, description, starts_at, cover_charge)
		VALUES ($1, $2, $3, $4) RETURNING id`
	getEventByIDSQL = `SELECT id, name, description, starts_at, cover_charge FROM events WHERE id = $1`
	listEventsFromSQL = `SELECT id, name, description, starts_at, cover_charge FROM events
		WHERE starts_at >= $1 ORDER BY starts_at, id`
	deleteEventSQL = `DELETE FROM events WHERE id = $1`
)

var _ event.Repository = (*EventRepository)(nil)

// EventRepository implements event.Repository backed by PostgreSQL.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns an EventRepository that uses the given pool.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	if err := r.pool.QueryRow(ctx, insertEventSQL,
		e.Name, e.Description, e.StartsAt, e.CoverCharge,
	).Scan(&e.ID); err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*event.Event, error) {
	rows, err := r.pool.Query(ctx, getEventByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting event %d: %w", id, err)
	}
	e, err := pgx.CollectExactlyOneRow(rows, scanEvent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, event.ErrNotFound
		}
		return nil, fmt.Errorf("getting event %d: %w", id, err)
	}
	return &e, nil
}

func (r *EventRepository) ListStartingFrom(ctx context.Context, t time.Time) ([]event.Event, error) {
	rows, err := r.pool.Query(ctx, listEventsFromSQL, t)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return pgx.CollectRows(rows, scanEvent)
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteEventSQL, id)
	if err != nil {
		return fmt.Errorf("deleting event %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return event.ErrNotFound
	}
	return nil
}

func scanEvent(row pgx.CollectableRow) (event.Event, error) {
	var e event.Event
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.StartsAt, &e.CoverCharge)
	e.StartsAt = e.StartsAt.UTC()
	return e, err
}
