package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/juyterman1000/smartllm-router/app"
	"github.com/juyterman1000/smartllm-router/handlers"
	"github.com/juyterman1000/smartllm-router/middleware"
)

// Setup configures all application routes and middleware.
func Setup(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	var db handlers.Pinger
	if deps.DB != nil {
		db = deps.DB
	}
	health := handlers.NewHealthHandler(db, deps.Logger)
	completions := handlers.NewCompletionHandler(deps.Router, deps.Logger)
	rules := handlers.NewRulesHandler(deps.Router, deps.Logger)
	analytics := handlers.NewAnalyticsHandler(deps.Router, deps.Logger)
	models := handlers.NewModelsHandler(deps.Router, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", health.Live)
	r.Get("/readyz", health.Ready)

	if deps.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(deps.Auth.RequireAuth)

		r.Post("/chat/completions", completions.Create)

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", rules.List)
			r.Post("/", rules.Create)
			r.Delete("/", rules.Clear)
			r.Delete("/{name}", rules.Delete)
		})

		r.Get("/analytics", analytics.Get)
		r.Get("/models", models.List)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
