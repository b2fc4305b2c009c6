// Package server exposes the HTTP surface: scraping, synchronous and
// asynchronous search, job inspection, health, and metrics.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ai-shine/scraping-engine/internal/engine"
	"github.com/ai-shine/scraping-engine/internal/registry"
)

// Deps carries everything the handlers need, injected for testability.
type Deps struct {
	Registry *registry.Registry

	// Collaborator credentials checked per request.
	SerperAPIKey  string
	GASWebhookURL string
	SlackBotToken string

	// NewDomainSource and NewSink build collaborator clients per run so
	// tests can substitute fakes.
	NewDomainSource func() engine.DomainSource
	NewSink         func() engine.ResultSink
	NewReporter     func(jobID, channel, threadTS, keyword string) engine.ProgressReporter
}

// New builds the router.
func New(deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	h := &handlers{deps: deps}

	r.Get("/health", h.health)
	r.Get("/metrics", h.metrics)
	r.Post("/scrape", h.scrape)
	r.Post("/search_sync", h.searchSync)
	r.Post("/search", h.search)
	r.Get("/jobs", h.listJobs)
	r.Get("/jobs/{jobID}", h.jobStatus)
	r.Get("/jobs/{jobID}/result", h.jobResult)
	r.Delete("/jobs/{jobID}", h.deleteJob)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)))
	})
}
