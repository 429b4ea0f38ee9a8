package poem

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eeviriyi/site/internal/log"
)

func poemServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /token", func(w http.ResponseWriter, _ *http.Request) {
		tokenCalls++
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "success", "data": "test-token"})
	})
	mux.HandleFunc("GET /one.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-User-Token") != "test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(Result{
			Status: "success",
			Data: Data{
				ID:      "abc",
				Content: "春眠不觉晓",
				Origin: Origin{
					Title:   "春晓",
					Dynasty: "唐代",
					Author:  "孟浩然",
					Content: []string{"春眠不觉晓，处处闻啼鸟。"},
				},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokenCalls
}

func TestSentence(t *testing.T) {
	srv, tokenCalls := poemServer(t)
	client := NewClient(log.NewNop(), WithBaseURL(srv.URL))

	result, err := client.Sentence(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "春眠不觉晓", result.Data.Content)
	assert.Equal(t, "孟浩然", result.Data.Origin.Author)

	// Token is cached across calls.
	_, err = client.Sentence(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, *tokenCalls)
}

func TestSentenceUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(log.NewNop(), WithBaseURL(srv.URL))

	_, err := client.Sentence(context.Background())
	assert.ErrorContains(t, err, "502")
}
