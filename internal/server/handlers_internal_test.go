package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"postsmith/internal/database"
	"postsmith/internal/domain"
	"postsmith/internal/pipeline"
)

type stubSearcher struct {
	results domain.SearchResults
	err     error
}

func (s *stubSearcher) Search(_ context.Context, _ string) (domain.SearchResults, error) {
	return s.results, s.err
}

type stubSelector struct {
	urls []string
	err  error
}

func (s *stubSelector) Select(_ context.Context, _ domain.SearchResults, _ string) ([]string, error) {
	return s.urls, s.err
}

type stubFetcher struct {
	outcomes []domain.FetchOutcome
	err      error
}

func (s *stubFetcher) FetchAll(_ context.Context, _ []string) ([]domain.FetchOutcome, error) {
	return s.outcomes, s.err
}

type stubSummarizer struct {
	summaries []string
	err       error
}

func (s *stubSummarizer) Summarize(_ context.Context, _ []domain.Document, _ string) ([]string, error) {
	return s.summaries, s.err
}

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Generate(_ context.Context, _ []string, _ string) (string, error) {
	return s.text, s.err
}

func testServer(t *testing.T, p *pipeline.Pipeline) *httptest.Server {
	t.Helper()

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"), slog.Default())
	if err != nil {
		t.Fatalf("create database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})

	srv := httptest.NewServer(New(p, db, nil, time.Minute, slog.Default()).Router())
	t.Cleanup(srv.Close)

	return srv
}

func happyPipeline() *pipeline.Pipeline {
	return pipeline.New(
		&stubSearcher{results: domain.SearchResults{Raw: []byte(`{"organic":[]}`)}},
		&stubSelector{urls: []string{"https://example.com/a"}},
		&stubFetcher{outcomes: []domain.FetchOutcome{{
			URL:      "https://example.com/a",
			Document: &domain.Document{URL: "https://example.com/a", Title: "A", Text: "some text"},
		}}},
		&stubSummarizer{summaries: []string{"summary one", "summary two"}},
		&stubGenerator{text: "final post"},
		slog.Default(),
	)
}

func TestHandleGeneratePost(t *testing.T) {
	srv := testServer(t, happyPipeline())

	resp, err := http.Post(srv.URL+"/api/posts", "application/json", strings.NewReader(`{"query":"electric vehicles"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	var body generateResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if body.Post != "final post" {
		t.Fatalf("unexpected post: %q", body.Post)
	}
	if len(body.Summaries) != 2 {
		t.Fatalf("unexpected summary count: %d", len(body.Summaries))
	}
	if len(body.Documents) != 1 || body.Documents[0].URL != "https://example.com/a" {
		t.Fatalf("unexpected documents: %+v", body.Documents)
	}
}

func TestHandleGeneratePostSavesRunHistory(t *testing.T) {
	srv := testServer(t, happyPipeline())

	resp, err := http.Post(srv.URL+"/api/posts", "application/json", strings.NewReader(`{"query":"electric vehicles"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/runs")
	if err != nil {
		t.Fatalf("get runs: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var body struct {
		Runs []domain.Run `json:"runs"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(body.Runs) != 1 {
		t.Fatalf("expected one saved run, got %d", len(body.Runs))
	}
	if body.Runs[0].Query != "electric vehicles" || body.Runs[0].Post != "final post" {
		t.Fatalf("unexpected run: %+v", body.Runs[0])
	}
}

func TestHandleGeneratePostMapsStageAndKind(t *testing.T) {
	p := pipeline.New(
		&stubSearcher{results: domain.SearchResults{Raw: []byte(`{}`)}},
		&stubSelector{err: &domain.ParseError{Op: "model output", Err: errors.New("output is prose")}},
		&stubFetcher{},
		&stubSummarizer{},
		&stubGenerator{},
		slog.Default(),
	)
	srv := testServer(t, p)

	resp, err := http.Post(srv.URL+"/api/posts", "application/json", strings.NewReader(`{"query":"electric vehicles"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	var body errorResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if body.Stage != "select" {
		t.Fatalf("unexpected stage: %q", body.Stage)
	}
	if body.Kind != "parse" {
		t.Fatalf("unexpected kind: %q", body.Kind)
	}
	if body.Error == "" {
		t.Fatalf("expected an error message")
	}
}

func TestHandleGeneratePostRejectsEmptyQuery(t *testing.T) {
	srv := testServer(t, happyPipeline())

	resp, err := http.Post(srv.URL+"/api/posts", "application/json", strings.NewReader(`{"query":"  "}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestTopicEndpoints(t *testing.T) {
	srv := testServer(t, happyPipeline())

	resp, err := http.Post(srv.URL+"/api/topics", "application/json", strings.NewReader(`{"query":"electric vehicles"}`))
	if err != nil {
		t.Fatalf("add topic: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status for add: %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/topics")
	if err != nil {
		t.Fatalf("list topics: %v", err)
	}

	var body struct {
		Topics []domain.Topic `json:"topics"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	_ = resp.Body.Close()

	if len(body.Topics) != 1 || body.Topics[0].Query != "electric vehicles" {
		t.Fatalf("unexpected topics: %+v", body.Topics)
	}

	req, err := http.NewRequest(
		http.MethodDelete,
		fmt.Sprintf("%s/api/topics/%d", srv.URL, body.Topics[0].ID),
		nil,
	)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("remove topic: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unexpected status for remove: %d", resp.StatusCode)
	}
}
