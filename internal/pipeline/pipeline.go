package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"postsmith/internal/domain"
)

// Stage names the pipeline step a failure belongs to.
type Stage string

const (
	StageSearch    Stage = "search"
	StageSelect    Stage = "select"
	StageFetch     Stage = "fetch"
	StageSummarize Stage = "summarize"
	StageGenerate  Stage = "generate"
)

// Error tags a stage failure; the cause keeps its own typed kind.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Searcher interface {
	Search(ctx context.Context, query string) (domain.SearchResults, error)
}

type Selector interface {
	Select(ctx context.Context, results domain.SearchResults, query string) ([]string, error)
}

type Fetcher interface {
	FetchAll(ctx context.Context, urls []string) ([]domain.FetchOutcome, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, docs []domain.Document, query string) ([]string, error)
}

type Generator interface {
	Generate(ctx context.Context, summaries []string, query string) (string, error)
}

// Pipeline runs the five stages in order. Any stage failure aborts the run;
// no stage after the failing one executes.
type Pipeline struct {
	searcher   Searcher
	selector   Selector
	fetcher    Fetcher
	summarizer Summarizer
	generator  Generator
	log        *slog.Logger
}

func New(
	searcher Searcher,
	selector Selector,
	fetcher Fetcher,
	summarizer Summarizer,
	generator Generator,
	log *slog.Logger,
) *Pipeline {
	return &Pipeline{
		searcher:   searcher,
		selector:   selector,
		fetcher:    fetcher,
		summarizer: summarizer,
		generator:  generator,
		log:        log,
	}
}

// Run executes one end-to-end run for the query.
func (p *Pipeline) Run(ctx context.Context, query string) (*domain.RunResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is empty")
	}

	result := &domain.RunResult{
		Query:     query,
		StartedAt: time.Now().UTC(),
	}

	searchResults, err := p.searcher.Search(ctx, query)
	if err != nil {
		return nil, &Error{Stage: StageSearch, Err: err}
	}
	result.SearchResults = searchResults.Raw
	p.log.InfoContext(ctx, "Search stage is done",
		"query", query,
		"payloadLen", len(searchResults.Raw))

	urls, err := p.selector.Select(ctx, searchResults, query)
	if err != nil {
		return nil, &Error{Stage: StageSelect, Err: err}
	}
	result.URLs = urls
	p.log.InfoContext(ctx, "Select stage is done",
		"query", query,
		"urlCount", len(urls))

	outcomes, err := p.fetcher.FetchAll(ctx, urls)
	if err != nil {
		return nil, &Error{Stage: StageFetch, Err: err}
	}
	for _, outcome := range outcomes {
		if outcome.Document != nil {
			result.Documents = append(result.Documents, *outcome.Document)
		}
	}
	if len(result.Documents) == 0 {
		return nil, &Error{
			Stage: StageFetch,
			Err:   errors.New("no documents were fetched"),
		}
	}
	p.log.InfoContext(ctx, "Fetch stage is done",
		"query", query,
		"documentCount", len(result.Documents))

	summaries, err := p.summarizer.Summarize(ctx, result.Documents, query)
	if err != nil {
		return nil, &Error{Stage: StageSummarize, Err: err}
	}
	result.Summaries = summaries
	p.log.InfoContext(ctx, "Summarize stage is done",
		"query", query,
		"summaryCount", len(summaries))

	generated, err := p.generator.Generate(ctx, summaries, query)
	if err != nil {
		return nil, &Error{Stage: StageGenerate, Err: err}
	}
	if strings.TrimSpace(generated) == "" {
		return nil, &Error{
			Stage: StageGenerate,
			Err:   &domain.ModelError{Op: "generate post", Err: errors.New("post is empty")},
		}
	}
	result.Post = generated
	result.FinishedAt = time.Now().UTC()
	p.log.InfoContext(ctx, "Generate stage is done",
		"query", query,
		"postLen", len(generated),
		"durationSeconds", result.FinishedAt.Sub(result.StartedAt).Seconds())

	return result, nil
}
