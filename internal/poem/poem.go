// Package poem fetches a daily classical Chinese poem sentence from the
// jinrishici API, proxying it so the frontend never talks to the upstream
// directly.
package poem

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultBaseURL = "https://v2.jinrishici.com"

	requestTimeout = 10 * time.Second
)

// Origin describes the poem a sentence comes from.
type Origin struct {
	Title     string   `json:"title"`
	Dynasty   string   `json:"dynasty"`
	Author    string   `json:"author"`
	Content   []string `json:"content"`
	Translate []string `json:"translate"`
}

// Data is one recommended sentence.
type Data struct {
	ID                string   `json:"id"`
	Content           string   `json:"content"`
	Popularity        int      `json:"popularity"`
	Origin            Origin   `json:"origin"`
	MatchTags         []string `json:"matchTags"`
	RecommendedReason string   `json:"recommendedReason"`
	CacheAt           string   `json:"cacheAt"`
}

// Result is the upstream response shape, passed through to the frontend.
type Result struct {
	Status string `json:"status"`
	Data   Data   `json:"data"`
}

type tokenResponse struct {
	Status string `json:"status"`
	Data   string `json:"data"`
}

// Client fetches poem sentences. The upstream identifies callers by token;
// the token is fetched once and cached for the process lifetime.
//
// Safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger

	mu    sync.Mutex
	token string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a poem client.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sentence returns today's recommended sentence.
func (c *Client) Sentence(ctx context.Context) (*Result, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/one.json", nil)
	if err != nil {
		return nil, fmt.Errorf("building poem request: %w", err)
	}
	req.Header.Set("X-User-Token", token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching poem: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poem API returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding poem response: %w", err)
	}
	if result.Status != "success" {
		return nil, fmt.Errorf("poem API returned status %q", result.Status)
	}
	return &result, nil
}

// ensureToken returns the cached caller token, fetching it on first use.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/token", nil)
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching poem token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("poem token API returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if tr.Data == "" {
		return "", fmt.Errorf("poem token API returned empty token")
	}

	c.token = tr.Data
	c.logger.Debug("poem token acquired")
	return c.token, nil
}
