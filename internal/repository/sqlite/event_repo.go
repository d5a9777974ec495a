package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nlschedule/internal/domain"
)

const eventColumns = `id, owner_id, title, start_at, end_at, kind, priority, is_all_day, categories, created_at, updated_at`

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository returns an EventRepository backed by a migrated SQLite database.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	categories, err := json.Marshal(e.Categories)
	if err != nil {
		return fmt.Errorf("create event: encode categories: %w", err)
	}
	var end any
	if e.End != nil {
		end = formatTime(*e.End)
	}
	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.OwnerID, e.Title, formatTime(e.Start), end, string(e.Kind), e.Priority, e.IsAllDay,
		string(categories), formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create event: insert: %w", err)
	}
	e.ID = id
	return nil
}

func (r *eventRepository) ListOverlapping(ctx context.Context, ownerID string, start, end time.Time) ([]*domain.Event, error) {
	s, en := formatTime(start), formatTime(end)
	return r.list(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE owner_id = ?
		  AND end_at IS NOT NULL
		  AND (
			(start_at < ? AND end_at > ?)
			OR (start_at >= ? AND start_at < ?)
			OR (start_at <= ? AND end_at >= ?)
		  )
		ORDER BY start_at ASC, created_at ASC`,
		ownerID, en, s, s, en, s, en,
	)
}

func (r *eventRepository) ListByStartRange(ctx context.Context, ownerID string, start, end time.Time) ([]*domain.Event, error) {
	return r.list(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE owner_id = ? AND start_at >= ? AND start_at <= ?
		ORDER BY start_at ASC, created_at ASC`,
		ownerID, formatTime(start), formatTime(end),
	)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: query: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		var (
			e                       domain.Event
			start, created, updated string
			end                     sql.NullString
			kind, categories        string
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &start, &end, &kind, &e.Priority, &e.IsAllDay,
			&categories, &created, &updated); err != nil {
			return nil, fmt.Errorf("list events: scan: %w", err)
		}
		if e.Start, err = parseTime(start); err != nil {
			return nil, err
		}
		if end.Valid {
			t, err := parseTime(end.String)
			if err != nil {
				return nil, err
			}
			e.End = &t
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if e.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(categories), &e.Categories); err != nil {
			return nil, fmt.Errorf("list events: decode categories: %w", err)
		}
		e.Kind = domain.Kind(kind)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: rows: %w", err)
	}
	return events, nil
}

func (r *eventRepository) Delete(ctx context.Context, id, ownerID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
