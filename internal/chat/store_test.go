package chat

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	raw []byte
	err error
}

func (f *fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	*(dest[0].(*[]byte)) = f.raw
	return nil
}

type fakeRows struct {
	rows [][2]string
	idx  int
}

func (f *fakeRows) Close()                                       {}
func (f *fakeRows) Err() error                                   { return nil }
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

func (f *fakeRows) Next() bool {
	f.idx++
	return f.idx <= len(f.rows)
}

func (f *fakeRows) Scan(dest ...any) error {
	row := f.rows[f.idx-1]
	*(dest[0].(*string)) = row[0]
	*(dest[1].(*string)) = row[1]
	return nil
}

type fakeDB struct {
	row      *fakeRow
	rows     *fakeRows
	execSQL  []string
	execArgs [][]any
	execTag  pgconn.CommandTag
}

func (f *fakeDB) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return f.rows, nil
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return f.row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	if f.execTag.String() != "" {
		return f.execTag, nil
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func TestStoreLoadExisting(t *testing.T) {
	stored := []UIMessage{
		{ID: "u1", Role: RoleUser, Parts: []Part{TextPart("hi")}},
		{ID: "msga", Role: RoleAssistant, Parts: []Part{TextPart("hello")}},
	}
	raw, err := json.Marshal(stored)
	require.NoError(t, err)

	store := NewStore(&fakeDB{row: &fakeRow{raw: raw}}, nil)

	messages, err := store.Load(context.Background(), "chat1", "en")
	require.NoError(t, err)
	assert.Equal(t, stored, messages)
}

func TestStoreLoadMissingReturnsGreeting(t *testing.T) {
	store := NewStore(&fakeDB{row: &fakeRow{err: pgx.ErrNoRows}}, nil)

	messages, err := store.Load(context.Background(), "new-chat", "zh")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "0123456789101112", messages[0].ID)
	assert.Contains(t, messages[0].Parts[0].Text, "小助手")
}

func TestStoreLoadEmptyReturnsGreeting(t *testing.T) {
	store := NewStore(&fakeDB{row: &fakeRow{raw: []byte("[]")}}, nil)

	messages, err := store.Load(context.Background(), "empty-chat", "en")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].Parts[0].Text, "assistant created by Eeviriyi")
}

func TestStoreSave(t *testing.T) {
	db := &fakeDB{}
	store := NewStore(db, nil)

	messages := []UIMessage{{ID: "u1", Role: RoleUser, Parts: []Part{TextPart("hi")}}}
	require.NoError(t, store.Save(context.Background(), "chat1", messages))

	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "ON CONFLICT (id) DO UPDATE")
	assert.Equal(t, "chat1", db.execArgs[0][0])
}

func TestStoreSaveFirstMessageTruncates(t *testing.T) {
	db := &fakeDB{}
	store := NewStore(db, nil)

	long := ""
	for range 300 {
		long += "字"
	}
	require.NoError(t, store.SaveFirstMessage(context.Background(), "chat1", long))

	require.Len(t, db.execArgs, 1)
	saved := db.execArgs[0][1].(string)
	assert.Len(t, []rune(saved), 255)
}

func TestStoreList(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{rows: [][2]string{
		{"chat1", "What does Eeviriyi do?"},
		{"chat2", "New Chat"},
	}}}
	store := NewStore(db, nil)

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ListEntry{ID: "chat1", FirstMessage: "What does Eeviriyi do?"}, entries[0])
}

func TestStoreDelete(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("DELETE 1")}
	store := NewStore(db, nil)

	require.NoError(t, store.Delete(context.Background(), "chat1"))
	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "DELETE FROM chat_histories")
}

func TestStoreDeleteMissing(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("DELETE 0")}
	store := NewStore(db, nil)

	err := store.Delete(context.Background(), "chat1")
	assert.ErrorIs(t, err, ErrChatNotFound)
}
