package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ricirt/devlog-poster/internal/api/handler"
	apimw "github.com/ricirt/devlog-poster/internal/api/middleware"
	"github.com/ricirt/devlog-poster/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	runner handler.Runner,
	queue *service.QueueService,
	limiter apimw.Limiter,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)            // recover panics, return 500
	r.Use(chimw.RealIP)               // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)        // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	th := handler.NewTriggerHandler(runner, logger)
	ih := handler.NewItemHandler(queue, logger)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(limiter))
		r.Get("/run-daily", th.RunDaily)
		r.Post("/run-daily", th.RunDaily)
	})

	// Raw Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/items", ih.List)
		r.Get("/items/{sequence}", ih.GetBySequence)
		r.Get("/stats", ih.Stats)
	})

	return r
}
