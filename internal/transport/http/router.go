// Package httptransport is the admin API: a thin chi layer over the
// pipeline, trends, and artifact services. Handlers delegate to services
// and translate errors through pkg/platform/httputil; no business logic
// lives here.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mindcast/internal/platform/metrics"
)

// Registrar mounts a group of routes on the router.
type Registrar interface {
	Register(r chi.Router)
}

// RouterConfig carries the transport-level wiring.
type RouterConfig struct {
	AdminToken string
	Logger     *slog.Logger
	Metrics    *metrics.Metrics

	// Public handlers skip admin auth (health, metrics, artifacts).
	Public []Registrar
	// Admin handlers sit behind the bearer token.
	Admin []Registrar
}

// NewRouter assembles the HTTP surface. Health, metrics, and artifact
// downloads are public; everything that mutates or inspects pipeline state
// requires the admin bearer token.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(withRequestContext)
	r.Use(withLogging(cfg.Logger, cfg.Metrics))

	r.Handle("/metrics", promhttp.Handler())
	for _, h := range cfg.Public {
		h.Register(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(withAdminAuth(cfg.AdminToken))
		for _, h := range cfg.Admin {
			h.Register(r)
		}
	})

	return r
}
