package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/calebdsmith/battleboats/internal/hub"
	"github.com/calebdsmith/battleboats/internal/metrics"
	"github.com/calebdsmith/battleboats/internal/ws"
)

func SetupRoutes(h *hub.Hub, st ResultStore, m *metrics.Metrics, reg *prometheus.Registry, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public routes
	r.Post("/matches", CreateMatch(h, m, log))
	r.Post("/matches/{code}/result", ReportResult(h, st, m, log))
	r.Get("/matches/results", RecentResults(st))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))

	if reg != nil {
		r.Get("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP)
	}
	return r
}
