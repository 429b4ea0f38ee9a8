package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eeviriyi/site/internal/log"
)

func newTestServer() *Server {
	logger := log.NewNop()
	return NewServer(Handlers{
		Health:      NewHealthHandler(&fakePinger{}, logger),
		Chat:        NewChatHandler(&fakeResponder{}, newFakeChatStore(), logger),
		History:     NewHistoryHandler(newFakeChatStore(), logger),
		Events:      NewEventsHandler(&fakeEventStore{}, logger),
		DeviceStats: NewDeviceStatsHandler(&fakeDeviceStore{}, logger),
		Posts:       NewPostsHandler(testPostSource(), logger),
		Poem:        NewPoemHandler(&fakePoemSource{}, logger),
		Preferences: NewPreferencesHandler(logger),
	})
}

func TestServerRoutes(t *testing.T) {
	srv := newTestServer()
	h := srv.Handler()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/api/chats", http.StatusOK},
		{http.MethodGet, "/api/events", http.StatusOK},
		{http.MethodGet, "/api/device-stats", http.StatusOK},
		{http.MethodGet, "/api/posts", http.StatusOK},
		{http.MethodGet, "/api/posts/hello-world", http.StatusOK},
		{http.MethodGet, "/api/tags", http.StatusOK},
		{http.MethodGet, "/api/preferences", http.StatusOK},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
		{http.MethodDelete, "/api/posts", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestServerRequestIDHeader(t *testing.T) {
	h := newTestServer().Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
