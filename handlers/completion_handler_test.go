package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services"
	"github.com/juyterman1000/smartllm-router/services/router"
	"github.com/juyterman1000/smartllm-router/services/rules"
	"github.com/juyterman1000/smartllm-router/services/tracker"
)

// fakeService is a scripted RouterService for handler tests.
type fakeService struct {
	routeResp *models.RouterResponse
	routeErr  error
	lastReq   router.Request

	rules     []rules.Rule
	addErr    error
	analytics tracker.Analytics
	models    []models.Model
}

func (f *fakeService) Route(_ context.Context, req router.Request) (*models.RouterResponse, error) {
	f.lastReq = req
	if f.routeErr != nil {
		return nil, f.routeErr
	}
	return f.routeResp, nil
}

func (f *fakeService) AddRule(rule rules.Rule) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.rules = append(f.rules, rule)
	return nil
}

func (f *fakeService) RemoveRule(name string) bool {
	for i, r := range f.rules {
		if r.Name == name {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeService) Rules() []rules.Rule                 { return f.rules }
func (f *fakeService) ClearRules()                         { f.rules = nil }
func (f *fakeService) Analytics(int) tracker.Analytics     { return f.analytics }
func (f *fakeService) Models() []models.Model              { return f.models }

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestCompletionCreate(t *testing.T) {
	t.Run("routes a valid request", func(t *testing.T) {
		svc := &fakeService{routeResp: &models.RouterResponse{
			ID:      uuid.New(),
			Content: "Paris",
			Model:   "mistral-7b",
		}}
		h := NewCompletionHandler(svc, zap.NewNop())

		w := postJSON(t, h.Create, `{
			"messages": [{"role": "user", "content": "What is the capital of France?"}],
			"strategy": "cost_optimized"
		}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp models.RouterResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Paris", resp.Content)
		assert.Equal(t, "mistral-7b", resp.Model)

		assert.Equal(t, "cost_optimized", svc.lastReq.Strategy)
		require.Len(t, svc.lastReq.Messages, 1)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		h := NewCompletionHandler(&fakeService{}, zap.NewNop())
		w := postJSON(t, h.Create, `{not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation failures", func(t *testing.T) {
		h := NewCompletionHandler(&fakeService{}, zap.NewNop())
		cases := []struct {
			name string
			body string
		}{
			{"no messages", `{"messages": []}`},
			{"bad role", `{"messages": [{"role": "robot", "content": "hi"}]}`},
			{"empty content", `{"messages": [{"role": "user", "content": ""}]}`},
			{"bad strategy", `{"messages": [{"role": "user", "content": "hi"}], "strategy": "fastest"}`},
			{"bad temperature", `{"messages": [{"role": "user", "content": "hi"}], "temperature": 3.0}`},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				w := postJSON(t, h.Create, tc.body)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})

	t.Run("service error mapping", func(t *testing.T) {
		cases := []struct {
			name       string
			err        error
			wantStatus int
		}{
			{"unknown model", services.NewUnknownModelError("gpt-99"), http.StatusNotFound},
			{"missing credential", services.NewMissingCredentialError("anthropic"), http.StatusServiceUnavailable},
			{"provider failure", services.NewProviderFailureError("openai", assert.AnError), http.StatusBadGateway},
			{"internal", assert.AnError, http.StatusInternalServerError},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				h := NewCompletionHandler(&fakeService{routeErr: tc.err}, zap.NewNop())
				w := postJSON(t, h.Create, `{"messages": [{"role": "user", "content": "hi"}]}`)
				assert.Equal(t, tc.wantStatus, w.Code)
			})
		}
	})
}
