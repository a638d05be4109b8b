package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Tradeoff/internal/simulator"
)

func NewRouter(svc *simulator.Service, adminToken string, requestsPerMinute int, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(requestsPerMinute))

	cases := NewCasesHandler(svc, logger)
	admin := NewAdminHandler(svc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/cases", cases.Create)
		r.Get("/cases", cases.List)
		r.Get("/cases/{id}", cases.Get)
		r.Post("/cases/{id}/evaluate", cases.Evaluate)
		r.Get("/cases/{id}/results", cases.Results)
		r.Get("/cases/{id}/ranking", cases.Ranking)
		r.Patch("/cases/{id}/weights", cases.ModifyWeight)
		r.Post("/cases/{id}/optimize", cases.Optimize)
		r.Get("/cases/{id}/scenarios/{scenario}/frontier", cases.Frontier)
		r.Get("/cases/{id}/events", cases.Events)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Get("/stats", admin.Stats)
			r.Delete("/cases/{id}", admin.DeleteCase)
		})
	})

	return r
}

// NewMetricsRouter serves health and Prometheus metrics. gatherer is
// usually prometheus.DefaultGatherer.
func NewMetricsRouter(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}
