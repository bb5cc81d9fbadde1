package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal interface needed to call a chat model. It mirrors
// CreateChatCompletion so any OpenAI-compatible backend can be adapted.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// PayloadError is an {"error": {...}} body delivered with a 2xx status,
// which go-openai would otherwise decode as a response without choices.
type PayloadError struct {
	Message    string
	Type       string
	StatusCode int
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("provider error payload (status %d): %s", e.StatusCode, e.Message)
}

// OpenAIProvider adapts *openai.Client to Client.
type OpenAIProvider struct {
	Inner *openai.Client
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return p.Inner.CreateChatCompletion(ctx, request)
}

// NewOpenAI builds a provider that sends apiKey as a bearer token.
// An empty baseURL keeps the library default (api.openai.com).
func NewOpenAI(apiKey, baseURL string, httpClient *http.Client) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if b := strings.TrimRight(strings.TrimSpace(baseURL), "/"); b != "" {
		cfg.BaseURL = b
	}
	client := &http.Client{}
	if httpClient != nil {
		c := *httpClient
		client = &c
	}
	client.Transport = payloadTransport{base: client.Transport}
	cfg.HTTPClient = client
	return &OpenAIProvider{Inner: openai.NewClientWithConfig(cfg)}
}

// payloadTransport turns successful responses that carry an error object
// into a *PayloadError returned from RoundTrip.
type payloadTransport struct {
	base http.RoundTripper
}

func (t payloadTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, err
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	var payload struct {
		Error *struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != nil {
		return nil, &PayloadError{Message: payload.Error.Message, Type: payload.Error.Type, StatusCode: resp.StatusCode}
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
