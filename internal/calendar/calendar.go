// Package calendar manages the site's two-week event calendar.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrEventNotFound is returned when an event ID does not exist.
var ErrEventNotFound = errors.New("event not found")

// Event is one calendar entry.
type Event struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Date        time.Time  `json:"date"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// NewEvent carries the fields needed to create an event.
type NewEvent struct {
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Date        time.Time `json:"date"`
}

// Querier defines the database operations Store needs.
// *pgxpool.Pool satisfies this.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists calendar events.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// NewStore creates a Store. A nil logger defaults to slog.Default().
func NewStore(db Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// TwoWeekRange returns the calendar window: Monday of the current week
// through Sunday of the next week, inclusive, in the given location.
func TwoWeekRange(now time.Time) (start, end time.Time) {
	// time.Weekday is Sunday-based; shift so Monday starts the week.
	offset := (int(now.Weekday()) + 6) % 7
	y, m, d := now.AddDate(0, 0, -offset).Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, 14).Add(-time.Nanosecond)
	return start, end
}

// EventsByDateRange returns events within [start, end], ordered by date.
func (s *Store) EventsByDateRange(ctx context.Context, start, end time.Time) ([]Event, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, description, date, is_completed, created_at
		 FROM calendar_events
		 WHERE date >= $1 AND date <= $2
		 ORDER BY date`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.IsCompleted, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

// Add creates an event and returns it with its assigned ID.
func (s *Store) Add(ctx context.Context, ev NewEvent) (*Event, error) {
	if ev.Title == "" {
		return nil, errors.New("event title is required")
	}
	if ev.Date.IsZero() {
		return nil, errors.New("event date is required")
	}

	var created Event
	err := s.db.QueryRow(ctx,
		`INSERT INTO calendar_events (title, description, date)
		 VALUES ($1, $2, $3)
		 RETURNING id, title, description, date, is_completed, created_at`,
		ev.Title, ev.Description, ev.Date).
		Scan(&created.ID, &created.Title, &created.Description, &created.Date, &created.IsCompleted, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting event: %w", err)
	}

	s.logger.Info("calendar event added", "event_id", created.ID, "title", created.Title)
	return &created, nil
}

// Delete removes an event by ID.
func (s *Store) Delete(ctx context.Context, id int) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting event %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// SetCompletion marks an event completed or not.
func (s *Store) SetCompletion(ctx context.Context, id int, completed bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE calendar_events SET is_completed = $2 WHERE id = $1`, id, completed)
	if err != nil {
		return fmt.Errorf("updating event %d completion: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}
