package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Pow2/internal/engine"
	"github.com/MikeSquared-Agency/Pow2/internal/hermes"
	"github.com/MikeSquared-Agency/Pow2/internal/metrics"
	"github.com/MikeSquared-Agency/Pow2/internal/store"
)

// NewRouter wires the public API. s and h may be nil when the service runs
// without a database or event bus.
func NewRouter(e *engine.Engine, s store.Store, h hermes.Client, m *metrics.Metrics, timeout time.Duration, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	if m != nil {
		r.Use(metrics.Middleware(m))
	}
	r.Use(RateLimitMiddleware(600))

	cpu := NewCPUHandler(e, timeout)
	seasons := NewSeasonsHandler(e.Seasons(), s, h)
	factorList := NewFactorsHandler(e.Registry())
	admin := NewAdminHandler(s)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/factors", factorList.List)

		r.Get("/seasons", seasons.List)
		r.Get("/seasons/{slug}", seasons.Get)
		r.Post("/seasons/{slug}/cpu", cpu.Calculate)
		r.Post("/seasons/{slug}/cpu/batch", cpu.Batch)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Put("/seasons/{slug}", seasons.Put)
			r.Delete("/seasons/{slug}", seasons.Delete)
			r.Get("/calculations", admin.Calculations)
		})
	})

	return r
}

func NewMetricsRouter(m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if m != nil {
		r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}
