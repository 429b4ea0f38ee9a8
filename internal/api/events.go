package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/eeviriyi/site/internal/calendar"
	"github.com/eeviriyi/site/internal/log"
)

// EventStore is the persistence the calendar endpoints need.
type EventStore interface {
	EventsByDateRange(ctx context.Context, start, end time.Time) ([]calendar.Event, error)
	Add(ctx context.Context, ev calendar.NewEvent) (*calendar.Event, error)
	Delete(ctx context.Context, id int) error
	SetCompletion(ctx context.Context, id int, completed bool) error
}

// EventsHandler handles the two-week calendar endpoints.
type EventsHandler struct {
	store  EventStore
	logger log.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewEventsHandler creates an events handler.
func NewEventsHandler(store EventStore, logger log.Logger) *EventsHandler {
	return &EventsHandler{store: store, logger: logger, now: time.Now}
}

// RegisterRoutes registers calendar routes on the given mux.
func (h *EventsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/events", h.list)
	mux.HandleFunc("POST /api/events", h.create)
	mux.HandleFunc("DELETE /api/events/{id}", h.delete)
	mux.HandleFunc("PATCH /api/events/{id}/completion", h.setCompletion)
}

// list returns events in the requested range, defaulting to the two-week
// window around today. start and end accept RFC 3339 timestamps.
func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request) {
	start, end := calendar.TwoWeekRange(h.now())

	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_START", "start must be RFC 3339")
			return
		}
		start = t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_END", "end must be RFC 3339")
			return
		}
		end = t
	}

	events, err := h.store.EventsByDateRange(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to list events", "error", err)
		writeError(w, http.StatusInternalServerError, "LIST_FAILED", "failed to list events")
		return
	}
	if events == nil {
		events = []calendar.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventsHandler) create(w http.ResponseWriter, r *http.Request) {
	var ev calendar.NewEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if ev.Title == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TITLE", "title is required")
		return
	}
	if ev.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "MISSING_DATE", "date is required")
		return
	}

	created, err := h.store.Add(r.Context(), ev)
	if err != nil {
		h.logger.Error("failed to add event", "error", err)
		writeError(w, http.StatusInternalServerError, "CREATE_FAILED", "failed to add event")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *EventsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, calendar.ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "event not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete event", "event_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "DELETE_FAILED", "failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventsHandler) setCompletion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var body struct {
		IsCompleted bool `json:"isCompleted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	err := h.store.SetCompletion(r.Context(), id, body.IsCompleted)
	if errors.Is(err, calendar.ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "event not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update event completion", "event_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "UPDATE_FAILED", "failed to update event")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "isCompleted": body.IsCompleted})
}

// eventID parses the id path segment, writing a 400 on failure.
func (h *EventsHandler) eventID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
