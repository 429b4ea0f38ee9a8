package api

import (
	"context"
	"net/http"

	"github.com/eeviriyi/site/internal/log"
	"github.com/eeviriyi/site/internal/poem"
)

// PoemSource fetches the daily poem sentence.
type PoemSource interface {
	Sentence(ctx context.Context) (*poem.Result, error)
}

// PoemHandler proxies the daily poem so the frontend stays same-origin.
type PoemHandler struct {
	client PoemSource
	logger log.Logger
}

// NewPoemHandler creates a poem handler.
func NewPoemHandler(client PoemSource, logger log.Logger) *PoemHandler {
	return &PoemHandler{client: client, logger: logger}
}

// RegisterRoutes registers the poem route on the given mux.
func (h *PoemHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/poem", h.get)
}

func (h *PoemHandler) get(w http.ResponseWriter, r *http.Request) {
	result, err := h.client.Sentence(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch poem", "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM_FAILED", "failed to fetch poem")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
