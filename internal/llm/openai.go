package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"postsmith/internal/domain"
)

const (
	baseMaxOutputTokens  int64 = 4096
	limitMaxOutputTokens int64 = 16384
)

// OpenAIClient calls OpenAI's Responses API.
type OpenAIClient struct {
	client openai.Client
	model  openai.ChatModel
}

func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

// Complete runs one completion. When the provider reports incomplete output
// due to the token cap, the cap is doubled and the call repeated, up to
// limitMaxOutputTokens.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", &domain.ModelError{Op: "complete", Err: errors.New("prompt is empty")}
	}

	maxOutputTokens := req.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = baseMaxOutputTokens
	}

	for {
		resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
			Model:           c.model,
			Temperature:     openai.Float(req.Temperature),
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(prompt),
			},
		})
		if err != nil {
			return "", &domain.ModelError{Op: "complete", Err: fmt.Errorf("do request: %w", err)}
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens *= 2
				if maxOutputTokens > limitMaxOutputTokens {
					maxOutputTokens = limitMaxOutputTokens
				}
				continue
			}
			return "", &domain.ModelError{
				Op: "complete",
				Err: fmt.Errorf(
					"response is incomplete (reason = %s, maxOutputTokens = %d)",
					resp.IncompleteDetails.Reason,
					maxOutputTokens,
				),
			}
		}

		text := strings.TrimSpace(resp.OutputText())
		if text == "" {
			return "", &domain.ModelError{
				Op:  "complete",
				Err: fmt.Errorf("output text is missing (status = %s)", resp.Status),
			}
		}
		return text, nil
	}
}
