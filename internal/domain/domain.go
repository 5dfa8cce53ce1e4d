package domain

import (
	"encoding/json"
	"time"
)

type SearchResults struct {
	// Raw is the provider payload exactly as returned; the pipeline never
	// interprets it beyond re-serialization into the selector prompt.
	Raw json.RawMessage
}

type Document struct {
	URL       string
	Title     string
	Text      string
	SiteName  string
	FetchedAt time.Time
}

type FetchOutcome struct {
	URL      string
	Document *Document
	Err      error
}

type Chunk struct {
	Index int
	Text  string
}

type RunResult struct {
	Query         string
	SearchResults json.RawMessage
	URLs          []string
	Documents     []Document
	Summaries     []string
	Post          string
	StartedAt     time.Time
	FinishedAt    time.Time
}

type Run struct {
	ID           int64
	Query        string
	Post         string
	URLs         []string
	SummaryCount int64
	CreatedAt    time.Time
}

type Topic struct {
	ID        int64
	Query     string
	CreatedAt time.Time
}
