package llm

import (
	"context"
)

// Request describes a single completion call.
type Request struct {
	// Prompt is the fully rendered prompt text.
	Prompt string
	// Temperature is passed through to the provider.
	Temperature float64
	// MaxOutputTokens caps the first attempt; the client may raise it when
	// the provider reports truncated output. Zero means the default cap.
	MaxOutputTokens int64
}

// Completer produces text for a rendered prompt.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
