package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"postsmith/internal/domain"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	articleClientTimeout = 20 * time.Second
	maxArticleBodyBytes  = 8 << 20
)

// Fetcher retrieves selected locations and extracts plain text from them.
type Fetcher struct {
	http       *http.Client
	feedParser *gofeed.Parser
	log        *slog.Logger
}

func NewFetcher(log *slog.Logger) *Fetcher {
	return &Fetcher{
		http:       &http.Client{Timeout: articleClientTimeout},
		feedParser: gofeed.NewParser(),
		log:        log,
	}
}

// FetchAll fetches every URL in input order and reports a per-location
// outcome. The returned error joins all per-location failures; callers that
// want strict semantics treat a non-nil error as fatal, callers that want
// partial results read the successful outcomes.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) ([]domain.FetchOutcome, error) {
	outcomes := make([]domain.FetchOutcome, 0, len(urls))
	var errs []error

	for _, u := range urls {
		doc, err := f.fetchOne(ctx, u)
		if err != nil {
			fetchErr := &domain.FetchError{URL: u, Err: err}
			errs = append(errs, fetchErr)
			outcomes = append(outcomes, domain.FetchOutcome{URL: u, Err: fetchErr})

			continue
		}

		outcomes = append(outcomes, domain.FetchOutcome{URL: u, Document: doc})
	}

	return outcomes, errors.Join(errs...)
}

func (f *Fetcher) fetchOne(ctx context.Context, rawURL string) (*domain.Document, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("URL is empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", closeErr,
				"url", rawURL,
				"operation", "fetchOne")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArticleBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if isFeedPayload(contentType, data) {
		return f.extractFeed(ctx, rawURL, data)
	}

	return f.extractArticle(ctx, rawURL, parsedURL, data)
}

func (f *Fetcher) extractArticle(
	ctx context.Context,
	rawURL string,
	parsedURL *url.URL,
	data []byte,
) (*domain.Document, error) {
	article, err := readability.FromReader(bytes.NewReader(data), parsedURL)
	if err != nil {
		f.log.WarnContext(ctx, "Readability failed so falling back to raw text extraction",
			"error", err,
			"url", rawURL,
			"bodyLen", len(data))

		return fallbackExtract(rawURL, data)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return fallbackExtract(rawURL, data)
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = extractTitle(data)
	}
	if title == "" {
		title = rawURL
	}

	return &domain.Document{
		URL:       rawURL,
		Title:     title,
		Text:      text,
		SiteName:  strings.TrimSpace(article.SiteName),
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (f *Fetcher) extractFeed(
	ctx context.Context,
	rawURL string,
	data []byte,
) (*domain.Document, error) {
	parsed, err := f.feedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var b strings.Builder
	for _, item := range parsed.Items {
		title := strings.TrimSpace(item.Title)
		if title != "" {
			b.WriteString(title)
			b.WriteString("\n")
		}

		description := strings.TrimSpace(item.Description)
		if description == "" {
			description = strings.TrimSpace(item.Content)
		}
		if description != "" {
			b.WriteString(description)
			b.WriteString("\n")
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, errors.New("feed contains no textual items")
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		f.log.WarnContext(ctx, "Empty feed title",
			"url", rawURL,
			"itemCount", len(parsed.Items))

		title = rawURL
	}

	return &domain.Document{
		URL:       rawURL,
		Title:     title,
		Text:      text,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func isFeedPayload(contentType string, data []byte) bool {
	contentType = strings.ToLower(contentType)
	if strings.Contains(contentType, "rss") ||
		strings.Contains(contentType, "atom") ||
		strings.Contains(contentType, "xml") {
		return true
	}

	head := bytes.TrimSpace(data)
	if len(head) > 64 {
		head = head[:64]
	}

	return bytes.HasPrefix(head, []byte("<?xml")) ||
		bytes.HasPrefix(head, []byte("<rss")) ||
		bytes.HasPrefix(head, []byte("<feed"))
}
