package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"postsmith/internal/domain"
)

const articleHTML = `<!doctype html>
<html>
<head>
  <title>Electric vehicles in 2026</title>
  <meta property="og:title" content="Electric vehicles in 2026">
</head>
<body>
  <article>
    <h1>Electric vehicles in 2026</h1>
    <p>Electric vehicle adoption keeps accelerating across every major market,
    with battery prices falling for the twelfth consecutive year and charging
    networks expanding into rural regions that were previously unserved.</p>
    <p>Analysts expect total cost of ownership parity with combustion cars in
    most segments, driven by cheaper cells, simplified drivetrains, and lower
    maintenance costs over the vehicle lifetime.</p>
    <p>Grid operators are preparing for the load shift with smart charging
    incentives and vehicle-to-grid pilots in several countries.</p>
  </article>
</body>
</html>`

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>EV Newsletter</title>
    <item>
      <title>Battery prices drop again</title>
      <description>Cell prices fell 9 percent year over year.</description>
    </item>
    <item>
      <title>Charging network milestone</title>
      <description>One million public chargers are now online.</description>
    </item>
  </channel>
</rss>`

func TestFetchAllExtractsArticleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	f := NewFetcher(slog.Default())

	outcomes, err := f.FetchAll(context.Background(), []string{srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(outcomes) != 1 {
		t.Fatalf("expected one outcome, got %d", len(outcomes))
	}

	doc := outcomes[0].Document
	if doc == nil {
		t.Fatalf("expected a document, got error: %v", outcomes[0].Err)
	}

	if !strings.Contains(doc.Text, "battery prices falling") {
		t.Fatalf("expected extracted text to contain article content, got %q", doc.Text)
	}
	if doc.Title == "" {
		t.Fatalf("expected a non-empty title")
	}
	if doc.URL != srv.URL {
		t.Fatalf("unexpected document URL: %q", doc.URL)
	}
}

func TestFetchAllParsesFeedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	f := NewFetcher(slog.Default())

	outcomes, err := f.FetchAll(context.Background(), []string{srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := outcomes[0].Document
	if doc == nil {
		t.Fatalf("expected a document, got error: %v", outcomes[0].Err)
	}

	if doc.Title != "EV Newsletter" {
		t.Fatalf("unexpected feed title: %q", doc.Title)
	}
	if !strings.Contains(doc.Text, "Battery prices drop again") {
		t.Fatalf("expected feed item titles in text, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "One million public chargers") {
		t.Fatalf("expected feed item descriptions in text, got %q", doc.Text)
	}
}

func TestFetchAllPreservesInputOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><head><title>Page %s</title></head><body><p>Content of page %s with enough words to extract.</p></body></html>", r.URL.Path, r.URL.Path)
	}))
	defer srv.Close()

	f := NewFetcher(slog.Default())

	urls := []string{srv.URL + "/first", srv.URL + "/second", srv.URL + "/third"}

	outcomes, err := f.FetchAll(context.Background(), urls)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(outcomes) != len(urls) {
		t.Fatalf("expected %d outcomes, got %d", len(urls), len(outcomes))
	}

	for i, outcome := range outcomes {
		if outcome.URL != urls[i] {
			t.Fatalf("outcome %d is out of order: got %q, want %q", i, outcome.URL, urls[i])
		}
	}
}

func TestFetchAllReportsPerLocationOutcomes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	f := NewFetcher(slog.Default())

	urls := []string{srv.URL + "/ok", srv.URL + "/missing"}

	outcomes, err := f.FetchAll(context.Background(), urls)
	if err == nil {
		t.Fatalf("expected a joined error for the failed location")
	}

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected a FetchError, got %v", err)
	}
	if fetchErr.URL != srv.URL+"/missing" {
		t.Fatalf("unexpected failing URL: %q", fetchErr.URL)
	}

	if outcomes[0].Document == nil {
		t.Fatalf("expected the first location to succeed")
	}
	if outcomes[1].Err == nil {
		t.Fatalf("expected the second location to carry its error")
	}
}

func TestFetchAllEmptyURLIsFetchError(t *testing.T) {
	f := NewFetcher(slog.Default())

	outcomes, err := f.FetchAll(context.Background(), []string{"  "})
	if err == nil {
		t.Fatalf("expected an error for an empty URL")
	}

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected a FetchError, got %v", err)
	}

	if outcomes[0].Document != nil {
		t.Fatalf("expected no document for an empty URL")
	}
}

func TestIsFeedPayloadSniffsBodyWithoutContentType(t *testing.T) {
	if !isFeedPayload("", []byte("  <?xml version=\"1.0\"?><rss></rss>")) {
		t.Fatalf("expected an XML prologue to be detected as a feed")
	}
	if !isFeedPayload("application/atom+xml", []byte("<feed></feed>")) {
		t.Fatalf("expected an atom content type to be detected as a feed")
	}
	if isFeedPayload("text/html", []byte("<html></html>")) {
		t.Fatalf("expected HTML to not be detected as a feed")
	}
}
