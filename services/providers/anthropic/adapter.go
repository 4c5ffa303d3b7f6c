// Package anthropic implements the provider adapter for the Anthropic
// messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services/providers"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	// The messages API requires max_tokens; used when the caller sets none.
	defaultMaxTokens = 1024
)

// Adapter calls the /v1/messages endpoint.
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
}

// New creates an Anthropic adapter.
func New(config providers.Config) *Adapter {
	cfg := config.WithDefaults(defaultBaseURL)
	return &Adapter{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name implements providers.Provider.
func (a *Adapter) Name() models.Provider {
	return models.ProviderAnthropic
}

// Invoke implements providers.Provider. System messages are lifted into the
// top-level system field the messages API expects.
func (a *Adapter) Invoke(ctx context.Context, model string, messages []models.Message, opts providers.InvokeOptions) (*providers.Invocation, error) {
	req := messagesRequest{
		Model:     model,
		MaxTokens: defaultMaxTokens,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		req.Temperature = &opts.Temperature
	}

	var system []string
	for _, msg := range messages {
		if msg.Role == "system" {
			system = append(system, msg.Content)
			continue
		}
		req.Messages = append(req.Messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}
	req.System = strings.Join(system, "\n")

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), 0, "encode request", false, err)
	}

	body, status, err := a.post(ctx, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, a.errorFromResponse(status, body)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, providers.NewProviderError(a.Name(), status, "decode response", false, err)
	}

	var content strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &providers.Invocation{
		Content:      content.String(),
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
	}, nil
}

func (a *Adapter) post(ctx context.Context, payload []byte) ([]byte, int, error) {
	var lastErr error

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, providers.NewProviderError(a.Name(), 0, "request cancelled", false, ctx.Err())
			case <-time.After(a.config.RetryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/v1/messages", bytes.NewReader(payload))
		if err != nil {
			return nil, 0, providers.NewProviderError(a.Name(), 0, "build request", false, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", a.config.APIKey)
		req.Header.Set("anthropic-version", apiVersion)

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

	return nil, 0, providers.NewProviderError(a.Name(), 0, "request failed after retries", true, lastErr)
}

func (a *Adapter) errorFromResponse(status int, body []byte) error {
	var parsed errorResponse
	message := string(body)
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}
	retryable := status >= 500 || status == http.StatusTooManyRequests
	return providers.NewProviderError(a.Name(), status, message, retryable, nil)
}

type messagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
