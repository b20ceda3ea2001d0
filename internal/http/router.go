// Package http assembles the service router: shared middleware, domain
// handlers, and the operational endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seva/internal/platform/metrics"
	"seva/internal/platform/middleware"
	"seva/pkg/platform/httputil"
)

// Registrar attaches a handler's routes to the router.
type Registrar interface {
	Register(r chi.Router)
}

// Pinger reports backing-store health for the readiness probe.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter wires middleware and all registered handlers.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, db Pinger, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(m))

	for _, h := range handlers {
		h.Register(r)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
