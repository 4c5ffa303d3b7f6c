// Package openai implements the provider adapter for the OpenAI chat
// completions API and any OpenAI-compatible endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services/providers"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Adapter calls the /chat/completions endpoint.
type Adapter struct {
	name       models.Provider
	config     providers.Config
	httpClient *http.Client
}

// New creates an OpenAI adapter.
func New(config providers.Config) *Adapter {
	return newAdapter(models.ProviderOpenAI, defaultBaseURL, config)
}

// NewCompatible creates an adapter for an OpenAI-compatible provider such as
// a hosted Mistral endpoint. baseURL must be set in config.
func NewCompatible(name models.Provider, config providers.Config) *Adapter {
	return newAdapter(name, config.BaseURL, config)
}

func newAdapter(name models.Provider, baseURL string, config providers.Config) *Adapter {
	cfg := config.WithDefaults(baseURL)
	return &Adapter{
		name:       name,
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name implements providers.Provider.
func (a *Adapter) Name() models.Provider {
	return a.name
}

// Invoke implements providers.Provider.
func (a *Adapter) Invoke(ctx context.Context, model string, messages []models.Message, opts providers.InvokeOptions) (*providers.Invocation, error) {
	reqBody := chatRequest{
		Model:    model,
		Messages: make([]chatMessage, len(messages)),
	}
	for i, msg := range messages {
		reqBody.Messages[i] = chatMessage{Role: msg.Role, Content: msg.Content}
	}
	if opts.MaxTokens > 0 {
		reqBody.MaxTokens = &opts.MaxTokens
	}
	if opts.Temperature > 0 {
		reqBody.Temperature = &opts.Temperature
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, providers.NewProviderError(a.name, 0, "encode request", false, err)
	}

	respBody, status, err := a.post(ctx, "/chat/completions", payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, a.errorFromResponse(status, respBody)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, providers.NewProviderError(a.name, status, "decode response", false, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, providers.NewProviderError(a.name, status, "response has no choices", false, nil)
	}

	return &providers.Invocation{
		Content:      parsed.Choices[0].Message.Content,
		InputTokens:  parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
	}, nil
}

// post sends the request, retrying transport errors and 5xx responses with
// linear backoff.
func (a *Adapter) post(ctx context.Context, path string, payload []byte) ([]byte, int, error) {
	var lastErr error

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, providers.NewProviderError(a.name, 0, "request cancelled", false, ctx.Err())
			case <-time.After(a.config.RetryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, 0, providers.NewProviderError(a.name, 0, "build request", false, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

		resp, err := a.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, body)
			continue
		}
		return body, resp.StatusCode, nil
	}

	return nil, 0, providers.NewProviderError(a.name, 0, "request failed after retries", true, lastErr)
}

func (a *Adapter) errorFromResponse(status int, body []byte) error {
	var parsed errorResponse
	message := string(body)
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}
	retryable := status >= 500 || status == http.StatusTooManyRequests
	return providers.NewProviderError(a.name, status, message, retryable, nil)
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
