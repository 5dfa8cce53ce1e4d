package post

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postsmith/internal/domain"
	"postsmith/internal/llm"
)

const (
	generationTemperature = 0.7

	promptTemplate = `%s

You are a world class researcher and social media user with a large following. The text above is some content about %s.
Please write a social media post about %s using the text above, and following all the rules below:
1/ The post needs to be engaging, informative with good data
2/ Make sure the post is not too long, it should be no more than 40,000 characters
3/ The post should address the %s topic very well
4/ The post needs to be viral, and get at least 1000 likes
5/ The post needs to written in a way that is easy to read and understand
6/ The post needs to give the reader some actionable advice and insights

POST:`
)

// Generator turns ordered chunk summaries into one final post.
type Generator struct {
	completer llm.Completer
}

func NewGenerator(completer llm.Completer) *Generator {
	return &Generator{completer: completer}
}

// Generate concatenates all summaries into one prompt and invokes the model
// once, returning its output verbatim.
func (g *Generator) Generate(
	ctx context.Context,
	summaries []string,
	query string,
) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", errors.New("query is empty")
	}
	if len(summaries) == 0 {
		return "", errors.New("summaries are empty")
	}

	block := strings.TrimSpace(strings.Join(summaries, "\n\n"))
	if block == "" {
		return "", errors.New("summaries contain no text")
	}

	text, err := g.completer.Complete(ctx, llm.Request{
		Prompt:      fmt.Sprintf(promptTemplate, block, query, query, query),
		Temperature: generationTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &domain.ModelError{Op: "generate post", Err: errors.New("post is empty")}
	}

	return text, nil
}
