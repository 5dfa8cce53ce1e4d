package fetch

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"postsmith/internal/domain"
)

// fallbackExtract pulls visible text out of an HTML document when
// readability cannot produce an article.
func fallbackExtract(rawURL string, data []byte) (*domain.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	doc.Find("script, style, noscript, iframe").Remove()

	text := strings.TrimSpace(doc.Find("body").Text())
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil, errors.New("document contains no visible text")
	}

	title := extractTitle(data)
	if title == "" {
		title = rawURL
	}

	return &domain.Document{
		URL:       rawURL,
		Title:     title,
		Text:      text,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// extractTitle prefers the og:title meta tag and falls back to <title>.
func extractTitle(data []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		return strings.TrimSpace(content)
	}

	return strings.TrimSpace(doc.Find("title").First().Text())
}
