package selector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mvdan.cc/xurls/v2"

	"postsmith/internal/domain"
	"postsmith/internal/llm"
)

const (
	selectionTemperature = 1.0

	promptTemplate = `You're a world class researcher, and are very good at finding the most relevant articles for certain topics.

%s

Above is a list of search results for the query %q.
Please choose the best article from the list. Return ONLY a JSON array containing the URL of that article, do not include anything else.`

	strictRetryInstruction = `Your previous reply was not valid JSON. Respond with a JSON array of URL strings and nothing else, for example: ["https://example.com/article"]`
)

// Selector asks the model to pick the best matching article URLs out of raw
// search results.
type Selector struct {
	completer llm.Completer
	log       *slog.Logger
}

func New(completer llm.Completer, log *slog.Logger) *Selector {
	return &Selector{
		completer: completer,
		log:       log,
	}
}

// Select returns an ordered, deduplicated list of https URLs. Model output
// that cannot be parsed triggers exactly one retry with a stricter
// instruction; a second failure is a ParseError.
func (s *Selector) Select(
	ctx context.Context,
	results domain.SearchResults,
	query string,
) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is empty")
	}
	if len(results.Raw) == 0 {
		return nil, errors.New("search results are empty")
	}

	prompt := fmt.Sprintf(promptTemplate, string(results.Raw), query)

	raw, err := s.completer.Complete(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: selectionTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	urls, parseErr := parseURLList(raw)
	if parseErr == nil {
		return urls, nil
	}

	s.log.WarnContext(ctx, "Model output is not a valid URL array so retrying once",
		"error", parseErr,
		"query", query,
		"outputLen", len(raw))

	raw, err = s.completer.Complete(ctx, llm.Request{
		Prompt:      prompt + "\n\n" + strictRetryInstruction,
		Temperature: selectionTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("complete retry: %w", err)
	}

	urls, parseErr = parseURLList(raw)
	if parseErr != nil {
		return nil, &domain.ParseError{Op: "model output", Err: parseErr}
	}

	return urls, nil
}

func parseURLList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)

	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("unmarshal array: %w", err)
	}

	httpsURLRe, err := xurls.StrictMatchingScheme("https://")
	if err != nil {
		return nil, fmt.Errorf("create regexp: %w", err)
	}

	urls := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}

		if httpsURLRe.FindString(trimmed) != trimmed {
			return nil, fmt.Errorf("entry is not an https URL: %q", trimmed)
		}

		if _, ok := seen[trimmed]; ok {
			continue
		}

		urls = append(urls, trimmed)
		seen[trimmed] = struct{}{}
	}

	if len(urls) == 0 {
		return nil, errors.New("array contains no URLs")
	}

	return urls, nil
}
