package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eeviriyi/site/internal/calendar"
	"github.com/eeviriyi/site/internal/log"
)

type fakeEventStore struct {
	events     []calendar.Event
	gotStart   time.Time
	gotEnd     time.Time
	deleted    []int
	completion map[int]bool
	missing    bool
}

func (f *fakeEventStore) EventsByDateRange(_ context.Context, start, end time.Time) ([]calendar.Event, error) {
	f.gotStart, f.gotEnd = start, end
	return f.events, nil
}

func (f *fakeEventStore) Add(_ context.Context, ev calendar.NewEvent) (*calendar.Event, error) {
	created := calendar.Event{ID: 7, Title: ev.Title, Description: ev.Description, Date: ev.Date}
	f.events = append(f.events, created)
	return &created, nil
}

func (f *fakeEventStore) Delete(_ context.Context, id int) error {
	if f.missing {
		return calendar.ErrEventNotFound
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeEventStore) SetCompletion(_ context.Context, id int, completed bool) error {
	if f.missing {
		return calendar.ErrEventNotFound
	}
	if f.completion == nil {
		f.completion = map[int]bool{}
	}
	f.completion[id] = completed
	return nil
}

func newEventsMux(store *fakeEventStore, now time.Time) *http.ServeMux {
	h := NewEventsHandler(store, log.NewNop())
	h.now = func() time.Time { return now }
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func TestEventsListDefaultsToTwoWeekWindow(t *testing.T) {
	store := &fakeEventStore{}
	// Wednesday; the window starts the preceding Monday.
	now := time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)
	mux := newEventsMux(store, now)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), store.gotStart)
	assert.True(t, store.gotEnd.Before(time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC)))
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestEventsListExplicitRange(t *testing.T) {
	store := &fakeEventStore{events: []calendar.Event{{ID: 1, Title: "standup"}}}
	mux := newEventsMux(store, time.Now())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/events?start=2025-06-01T00:00:00Z&end=2025-06-30T00:00:00Z", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), store.gotStart)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), store.gotEnd)

	var events []calendar.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "standup", events[0].Title)
}

func TestEventsListRejectsBadTimestamps(t *testing.T) {
	mux := newEventsMux(&fakeEventStore{}, time.Now())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events?start=yesterday", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_START")
}

func TestEventsCreate(t *testing.T) {
	store := &fakeEventStore{}
	mux := newEventsMux(store, time.Now())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/events",
		strings.NewReader(`{"title":"dentist","date":"2025-06-12T09:00:00Z"}`)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var created calendar.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 7, created.ID)
	assert.Equal(t, "dentist", created.Title)
}

func TestEventsCreateValidation(t *testing.T) {
	mux := newEventsMux(&fakeEventStore{}, time.Now())

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing title", `{"date":"2025-06-12T09:00:00Z"}`, "MISSING_TITLE"},
		{"missing date", `{"title":"dentist"}`, "MISSING_DATE"},
		{"bad json", `{`, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.code)
		})
	}
}

func TestEventsDelete(t *testing.T) {
	store := &fakeEventStore{}
	mux := newEventsMux(store, time.Now())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/events/3", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int{3}, store.deleted)
}

func TestEventsDeleteNotFound(t *testing.T) {
	mux := newEventsMux(&fakeEventStore{missing: true}, time.Now())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/events/99", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventsDeleteBadID(t *testing.T) {
	mux := newEventsMux(&fakeEventStore{}, time.Now())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/events/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ID")
}

func TestEventsSetCompletion(t *testing.T) {
	store := &fakeEventStore{}
	mux := newEventsMux(store, time.Now())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/events/5/completion",
		strings.NewReader(`{"isCompleted":true}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.completion[5])
	assert.JSONEq(t, `{"id":5,"isCompleted":true}`, rec.Body.String())
}

func TestEventsSetCompletionNotFound(t *testing.T) {
	mux := newEventsMux(&fakeEventStore{missing: true}, time.Now())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/events/99/completion",
		strings.NewReader(`{"isCompleted":false}`)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
