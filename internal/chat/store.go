package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrChatNotFound is returned when a chat ID has no stored history.
var ErrChatNotFound = errors.New("chat not found")

// Querier defines the database operations Store needs.
// *pgxpool.Pool satisfies this.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ListEntry is one chat in the history list.
type ListEntry struct {
	ID           string `json:"id"`
	FirstMessage string `json:"firstMessage"`
}

// Store persists chat histories as JSONB message arrays keyed by chat ID.
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

// Load returns the messages of a chat. A chat that does not exist yet, or
// exists with no messages, yields the localized greeting pair instead; the
// greeting is not persisted until the first real exchange is saved.
func (s *Store) Load(ctx context.Context, id, locale string) ([]UIMessage, error) {
	var raw []byte
	err := s.db.QueryRow(ctx,
		`SELECT messages FROM chat_histories WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Greeting(locale), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading chat %s: %w", id, err)
	}

	var messages []UIMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("decoding chat %s: %w", id, err)
	}
	if len(messages) == 0 {
		return Greeting(locale), nil
	}
	return messages, nil
}

// Save upserts the full message array of a chat. Last write wins.
func (s *Store) Save(ctx context.Context, id string, messages []UIMessage) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encoding chat %s: %w", id, err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO chat_histories (id, messages)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET messages = EXCLUDED.messages`,
		id, raw)
	if err != nil {
		return fmt.Errorf("saving chat %s: %w", id, err)
	}
	return nil
}

// SaveFirstMessage sets the chat's list title, typically the visitor's
// first question.
func (s *Store) SaveFirstMessage(ctx context.Context, id, firstMessage string) error {
	// varchar(255) counts characters, not bytes.
	if r := []rune(firstMessage); len(r) > 255 {
		firstMessage = string(r[:255])
	}
	_, err := s.db.Exec(ctx,
		`UPDATE chat_histories SET first_message = $2 WHERE id = $1`,
		id, firstMessage)
	if err != nil {
		return fmt.Errorf("saving first message of chat %s: %w", id, err)
	}
	return nil
}

// List returns every chat's ID and title.
func (s *Store) List(ctx context.Context) ([]ListEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, first_message FROM chat_histories ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	defer rows.Close()

	var entries []ListEntry
	for rows.Next() {
		var e ListEntry
		if err := rows.Scan(&e.ID, &e.FirstMessage); err != nil {
			return nil, fmt.Errorf("scanning chat list entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat list: %w", err)
	}
	return entries, nil
}

// Delete removes a chat. Deleting a chat that does not exist returns
// ErrChatNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM chat_histories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting chat %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn("delete of missing chat", "chat_id", id)
		return ErrChatNotFound
	}
	return nil
}
