// Package handlers exposes the routing service over HTTP. Handlers stay
// thin: decode, validate, call the service, map errors.
package handlers

import (
	"context"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services/router"
	"github.com/juyterman1000/smartllm-router/services/rules"
	"github.com/juyterman1000/smartllm-router/services/tracker"
)

// RouterService is the routing surface consumed by the HTTP layer.
// *router.Router satisfies it.
type RouterService interface {
	Route(ctx context.Context, req router.Request) (*models.RouterResponse, error)
	AddRule(rule rules.Rule) error
	RemoveRule(name string) bool
	Rules() []rules.Rule
	ClearRules()
	Analytics(windowDays int) tracker.Analytics
	Models() []models.Model
}
