package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"postsmith/internal/domain"
)

const (
	defaultBaseURL       = "https://google.serper.dev"
	clientTimeout        = 30 * time.Second
	maxResponseBodyBytes = 4 << 20
)

// Client issues search requests against the Serper API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (useful for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: clientTimeout},
	}
	for _, o := range opts {
		o(c)
	}

	return c, nil
}

// Search runs one search request and returns the raw provider payload.
func (c *Client) Search(ctx context.Context, query string) (domain.SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchResults{}, errors.New("query is empty")
	}

	body, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return domain.SearchResults{}, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/search",
		bytes.NewReader(body),
	)
	if err != nil {
		return domain.SearchResults{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.SearchResults{}, &domain.NetworkError{Op: "search", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return domain.SearchResults{}, &domain.NetworkError{
			Op:  "search",
			Err: fmt.Errorf("unexpected status: %d", resp.StatusCode),
		}
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return domain.SearchResults{}, &domain.NetworkError{Op: "search", Err: fmt.Errorf("read body: %w", err)}
	}

	if !json.Valid(payload) {
		return domain.SearchResults{}, &domain.ParseError{
			Op:  "search response",
			Err: errors.New("body is not valid JSON"),
		}
	}

	return domain.SearchResults{Raw: append([]byte(nil), payload...)}, nil
}
