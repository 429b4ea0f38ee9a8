package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/eeviriyi/site/internal/log"
	"github.com/eeviriyi/site/internal/posts"
)

// PostSource is the registry view the blog endpoints need.
type PostSource interface {
	ByDate(start, end int) []posts.Post
	ByTag(tag string) []posts.Post
	Tags() []string
	Metadata(slug string) (posts.Metadata, error)
	HTML(slug string) (string, error)
}

// PostsHandler serves the blog's post and tag listings.
type PostsHandler struct {
	registry PostSource
	logger   log.Logger
}

// NewPostsHandler creates a posts handler.
func NewPostsHandler(registry PostSource, logger log.Logger) *PostsHandler {
	return &PostsHandler{registry: registry, logger: logger}
}

// RegisterRoutes registers blog routes on the given mux.
func (h *PostsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/posts", h.list)
	mux.HandleFunc("GET /api/posts/{slug}", h.get)
	mux.HandleFunc("GET /api/tags", h.tags)
	mux.HandleFunc("GET /api/tags/{tag}", h.byTag)
}

// PostResponse is a full post: metadata plus rendered body.
type PostResponse struct {
	Slug     string         `json:"slug"`
	Metadata posts.Metadata `json:"metadata"`
	HTML     string         `json:"html"`
}

// list returns posts newest first. start and end select a 1-based
// inclusive range for pagination.
func (h *PostsHandler) list(w http.ResponseWriter, r *http.Request) {
	start, ok := h.rangeParam(w, r, "start")
	if !ok {
		return
	}
	end, ok := h.rangeParam(w, r, "end")
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.registry.ByDate(start, end))
}

func (h *PostsHandler) get(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	meta, err := h.registry.Metadata(slug)
	if errors.Is(err, posts.ErrPostNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "post not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load post", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "LOAD_FAILED", "failed to load post")
		return
	}

	html, err := h.registry.HTML(slug)
	if err != nil {
		h.logger.Error("failed to render post", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "LOAD_FAILED", "failed to load post")
		return
	}

	writeJSON(w, http.StatusOK, PostResponse{Slug: slug, Metadata: meta, HTML: html})
}

func (h *PostsHandler) tags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Tags())
}

func (h *PostsHandler) byTag(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.ByTag(r.PathValue("tag")))
}

// rangeParam parses an optional positive integer query parameter.
func (h *PostsHandler) rangeParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "INVALID_RANGE", name+" must be a positive integer")
		return 0, false
	}
	return n, true
}
