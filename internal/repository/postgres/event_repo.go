package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"nlschedule/internal/domain"
)

const eventColumns = `id, owner_id, title, start_at, end_at, kind, priority, is_all_day, categories, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (owner_id, title, start_at, end_at, kind, priority, is_all_day, categories, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var end sql.NullTime
	if e.End != nil {
		end = sql.NullTime{Time: *e.End, Valid: true}
	}
	categories := []string(e.Categories)
	if categories == nil {
		categories = []string{}
	}
	return r.DB.QueryRowContext(ctx, query,
		e.OwnerID, e.Title, e.Start, end, string(e.Kind), e.Priority, e.IsAllDay,
		pq.Array(categories), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

// ListOverlapping mirrors the in-memory overlap filter so the service sees the same candidates
// it would compute itself: true overlap, start inside the range, or full containment.
func (r *eventRepository) ListOverlapping(ctx context.Context, ownerID string, start, end time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE owner_id = $1
		  AND end_at IS NOT NULL
		  AND (
			(start_at < $3 AND end_at > $2)
			OR (start_at >= $2 AND start_at < $3)
			OR (start_at <= $2 AND end_at >= $3)
		  )
		ORDER BY start_at ASC, created_at ASC
	`
	return r.list(ctx, query, ownerID, start, end)
}

func (r *eventRepository) ListByStartRange(ctx context.Context, ownerID string, start, end time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE owner_id = $1 AND start_at >= $2 AND start_at <= $3
		ORDER BY start_at ASC, created_at ASC
	`
	return r.list(ctx, query, ownerID, start, end)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return []*domain.Event{}, nil
		}
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(rows *sql.Rows) (*domain.Event, error) {
	e := &domain.Event{}
	var endNull sql.NullTime
	var kind string
	var categories []string
	if err := rows.Scan(
		&e.ID, &e.OwnerID, &e.Title, &e.Start, &endNull, &kind, &e.Priority, &e.IsAllDay,
		pq.Array(&categories), &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if endNull.Valid {
		end := endNull.Time
		e.End = &end
	}
	e.Kind = domain.Kind(kind)
	e.Categories = domain.NewCategories(categories...)
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM events WHERE id = $1 AND owner_id = $2`
	result, err := r.DB.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// isInvalidUUID reports a malformed uuid literal (22P02). Such an id cannot match any row.
func isInvalidUUID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}
