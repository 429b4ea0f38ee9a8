package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/eeviriyi/site/internal/chat"
	"github.com/eeviriyi/site/internal/log"
)

// HistoryStore is the persistence the history endpoints need.
type HistoryStore interface {
	Load(ctx context.Context, id, locale string) ([]chat.UIMessage, error)
	List(ctx context.Context) ([]chat.ListEntry, error)
	Delete(ctx context.Context, id string) error
}

// HistoryHandler handles chat history listing, retrieval, and deletion.
type HistoryHandler struct {
	store  HistoryStore
	logger log.Logger
}

// NewHistoryHandler creates a history handler.
func NewHistoryHandler(store HistoryStore, logger log.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, logger: logger}
}

// RegisterRoutes registers history routes on the given mux.
func (h *HistoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/chats", h.list)
	mux.HandleFunc("GET /api/chats/{id}", h.get)
	mux.HandleFunc("DELETE /api/chats/{id}", h.delete)
}

func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list chats", "error", err)
		writeError(w, http.StatusInternalServerError, "LIST_FAILED", "failed to list chats")
		return
	}
	if entries == nil {
		entries = []chat.ListEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// get returns a chat's messages. A chat that does not exist yet returns
// the localized greeting, matching what a fresh chat shows.
func (h *HistoryHandler) get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	messages, err := h.store.Load(r.Context(), id, localeFromRequest(r))
	if err != nil {
		h.logger.Error("failed to load chat", "chat_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "LOAD_FAILED", "failed to load chat")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *HistoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, chat.ErrChatNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "chat not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete chat", "chat_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "DELETE_FAILED", "failed to delete chat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
