// Package google implements the provider adapter for the Gemini
// generateContent API.
package google

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

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Adapter calls the models/{model}:generateContent endpoint.
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
}

// New creates a Google adapter.
func New(config providers.Config) *Adapter {
	cfg := config.WithDefaults(defaultBaseURL)
	return &Adapter{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name implements providers.Provider.
func (a *Adapter) Name() models.Provider {
	return models.ProviderGoogle
}

// Invoke implements providers.Provider. The Gemini API has no system role;
// system messages are folded into the first user turn. Assistant turns map
// to the "model" role.
func (a *Adapter) Invoke(ctx context.Context, model string, messages []models.Message, opts providers.InvokeOptions) (*providers.Invocation, error) {
	req := generateRequest{}
	var system []string

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = append(system, msg.Content)
		case "assistant":
			req.Contents = append(req.Contents, content{Role: "model", Parts: []part{{Text: msg.Content}}})
		default:
			text := msg.Content
			if len(system) > 0 {
				text = strings.Join(system, "\n") + "\n\n" + text
				system = nil
			}
			req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: text}}})
		}
	}

	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		req.GenerationConfig = &generationConfig{}
		if opts.MaxTokens > 0 {
			req.GenerationConfig.MaxOutputTokens = opts.MaxTokens
		}
		if opts.Temperature > 0 {
			req.GenerationConfig.Temperature = &opts.Temperature
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), 0, "encode request", false, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.config.BaseURL, model, a.config.APIKey)
	body, status, err := a.post(ctx, url, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, a.errorFromResponse(status, body)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, providers.NewProviderError(a.Name(), status, "decode response", false, err)
	}
	if len(parsed.Candidates) == 0 {
		return nil, providers.NewProviderError(a.Name(), status, "response has no candidates", false, nil)
	}

	var text strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	inv := &providers.Invocation{
		Content:      text.String(),
		InputTokens:  parsed.UsageMetadata.PromptTokenCount,
		OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
	}
	// Older API versions omit usage metadata. Estimate at roughly four
	// bytes per token so costing still produces a number.
	if inv.InputTokens == 0 && inv.OutputTokens == 0 {
		for _, c := range req.Contents {
			for _, p := range c.Parts {
				inv.InputTokens += len(p.Text) / 4
			}
		}
		inv.OutputTokens = len(inv.Content) / 4
	}
	return inv, nil
}

func (a *Adapter) post(ctx context.Context, url string, payload []byte) ([]byte, int, error) {
	var lastErr error

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, providers.NewProviderError(a.Name(), 0, "request cancelled", false, ctx.Err())
			case <-time.After(a.config.RetryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, 0, providers.NewProviderError(a.Name(), 0, "build request", false, err)
		}
		req.Header.Set("Content-Type", "application/json")

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

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
