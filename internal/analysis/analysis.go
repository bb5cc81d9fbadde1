package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/termsense/internal/llm"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-3.5-turbo"

// ErrEmptyResponse indicates the provider returned no choices.
var ErrEmptyResponse = errors.New("the analysis service returned no result")

// RemoteAPIError carries the provider's error payload message verbatim.
type RemoteAPIError struct {
	Message    string
	Type       string
	StatusCode int
}

func (e *RemoteAPIError) Error() string { return e.Message }

// Analyzer issues exactly one chat-completion request per call. There is no
// retry or backoff; the caller decides whether to try again.
type Analyzer struct {
	// NewClient builds a client bound to the given credential.
	NewClient func(apiKey string) llm.Client
	Model     string
}

// Analyze sends prompt as a single user message and returns the raw
// completion text of the first choice.
func (a *Analyzer) Analyze(ctx context.Context, apiKey, prompt string) (string, error) {
	if a.NewClient == nil {
		return "", errors.New("analyzer not configured")
	}
	model := strings.TrimSpace(a.Model)
	if model == "" {
		model = DefaultModel
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	log.Debug().Str("model", model).Int("prompt_chars", len(prompt)).Msg("chat completion request")
	resp, err := a.NewClient(apiKey).CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &RemoteAPIError{Message: apiErr.Message, Type: apiErr.Type, StatusCode: apiErr.HTTPStatusCode}
		}
		var payloadErr *llm.PayloadError
		if errors.As(err, &payloadErr) {
			return "", &RemoteAPIError{Message: payloadErr.Message, Type: payloadErr.Type, StatusCode: payloadErr.StatusCode}
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
