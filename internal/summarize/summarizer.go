package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"postsmith/internal/domain"
	"postsmith/internal/llm"
)

const (
	summaryTemperature   = 0.7
	maxParallelSummaries = 4

	promptTemplate = `%s

You're a world class researcher, and you'll try to summarise the text above in order to create a social media post about %s.
Please follow all of the following rules when summarising:
1/ Make sure the content is engaging information with good data
2/ Make sure the content is not too long, it should be no more than 40,000 characters
3/ The content should address the %s topic very well
4/ The content needs to be viral, and get at least 1000 likes
5/ The content needs to written in a way that is easy to read and understand
6/ The content needs to give the reader some actionable advice and insights

SUMMARY:`
)

// Summarizer splits fetched documents into chunks and produces one summary
// per chunk, preserving chunk order.
type Summarizer struct {
	completer llm.Completer
	cache     *summaryCache
	log       *slog.Logger
}

func New(completer llm.Completer, log *slog.Logger) *Summarizer {
	return &Summarizer{
		completer: completer,
		cache:     newSummaryCache(summaryCacheMaxEntries, summaryCacheTTL),
		log:       log,
	}
}

// ChunkDocuments concatenates document texts and applies the configured
// splitting. Exposed so callers can report chunk counts before summarizing.
func ChunkDocuments(docs []domain.Document) []domain.Chunk {
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.Text)
	}

	parts := Split(JoinDocuments(texts))

	chunks := make([]domain.Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, domain.Chunk{Index: i, Text: part})
	}

	return chunks
}

// Summarize produces one summary per chunk with bounded parallelism; the
// result slice is ordered by chunk index regardless of completion order.
// On failure it returns the summaries gathered so far together with the
// joined per-chunk errors so callers can choose partial delivery.
func (s *Summarizer) Summarize(
	ctx context.Context,
	docs []domain.Document,
	query string,
) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is empty")
	}

	chunks := ChunkDocuments(docs)
	if len(chunks) == 0 {
		return nil, errors.New("documents contain no text")
	}

	summaries := make([]string, len(chunks))
	chunkErrs := make([]error, len(chunks))

	workerCount := maxParallelSummaries
	if workerCount > len(chunks) {
		workerCount = len(chunks)
	}

	tasks := make(chan domain.Chunk)
	var wg sync.WaitGroup

	for range workerCount {
		wg.Go(func() {
			for chunk := range tasks {
				summary, err := s.summarizeChunk(ctx, chunk, query)
				if err != nil {
					chunkErrs[chunk.Index] = fmt.Errorf("chunk %d: %w", chunk.Index, err)
					continue
				}
				summaries[chunk.Index] = summary
			}
		})
	}

	for _, chunk := range chunks {
		tasks <- chunk
	}

	close(tasks)
	wg.Wait()

	if err := errors.Join(chunkErrs...); err != nil {
		return summaries, err
	}

	return summaries, nil
}

func (s *Summarizer) summarizeChunk(
	ctx context.Context,
	chunk domain.Chunk,
	query string,
) (string, error) {
	now := time.Now().UTC()
	cacheKey := summaryCacheKey(query, chunk.Text)

	if summary, ok := s.cache.get(cacheKey, now); ok {
		return summary, nil
	}

	summary, err := s.completer.Complete(ctx, llm.Request{
		Prompt:      fmt.Sprintf(promptTemplate, chunk.Text, query, query),
		Temperature: summaryTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", &domain.ModelError{Op: "summarize chunk", Err: errors.New("summary is empty")}
	}

	s.cache.set(cacheKey, summary, now)

	return summary, nil
}
