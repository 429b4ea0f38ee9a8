// Package notify delivers push notifications to the site admin through
// ServerChan (sct.ftqq.com).
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://sctapi.ftqq.com"

	// defaultTags groups pushes in the ServerChan app.
	defaultTags = "服务器报警|报告"

	requestTimeout = 10 * time.Second
)

// ServerChan pushes notifications via the ServerChan API.
//
// Safe for concurrent use.
type ServerChan struct {
	key     string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Option customizes a ServerChan client.
type Option func(*ServerChan)

// WithBaseURL overrides the API endpoint, used in tests.
func WithBaseURL(u string) Option {
	return func(s *ServerChan) { s.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *ServerChan) { s.client = c }
}

// NewServerChan creates a client pushing with the given send key. An empty
// key yields a client whose Send is a logged no-op, so the assistant's
// notification tool degrades gracefully when the key is not configured.
func NewServerChan(key string, logger *slog.Logger, opts ...Option) *ServerChan {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ServerChan{
		key:     key,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send pushes a notification with the given title and body.
func (s *ServerChan) Send(ctx context.Context, title, message string) error {
	if s.key == "" {
		s.logger.Warn("serverchan key not configured, dropping notification", "title", title)
		return nil
	}

	form := url.Values{}
	form.Set("title", title)
	form.Set("desp", message)
	form.Set("tags", defaultTags)

	endpoint := fmt.Sprintf("%s/%s.send", s.baseURL, s.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building serverchan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending serverchan notification: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("serverchan returned status %d", resp.StatusCode)
	}

	s.logger.Info("notification sent", "title", title)
	return nil
}
