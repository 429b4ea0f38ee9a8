package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eeviriyi/site/internal/log"
	"github.com/eeviriyi/site/internal/poem"
)

type fakePoemSource struct {
	result *poem.Result
	err    error
}

func (f *fakePoemSource) Sentence(context.Context) (*poem.Result, error) {
	return f.result, f.err
}

func TestPoemProxy(t *testing.T) {
	source := &fakePoemSource{result: &poem.Result{
		Status: "success",
		Data: poem.Data{
			Content: "床前明月光",
			Origin: poem.Origin{
				Title:  "静夜思",
				Author: "李白",
			},
		},
	}}
	h := NewPoemHandler(source, log.NewNop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/poem", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "床前明月光")
	assert.Contains(t, rec.Body.String(), "李白")
}

func TestPoemProxyUpstreamFailure(t *testing.T) {
	source := &fakePoemSource{err: errors.New("connection refused")}
	h := NewPoemHandler(source, log.NewNop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/poem", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "UPSTREAM_FAILED")
}
