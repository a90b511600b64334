package httptransport

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	platformredis "mindcast/internal/platform/redis"
	"mindcast/pkg/platform/httputil"
)

// SystemHandler serves health and readiness.
type SystemHandler struct {
	db    *sql.DB
	redis *platformredis.Client
}

// NewSystemHandler constructs the system handler. db and redis may be nil
// when the corresponding backend is not configured.
func NewSystemHandler(db *sql.DB, redis *platformredis.Client) *SystemHandler {
	return &SystemHandler{db: db, redis: redis}
}

// Register mounts the system routes.
func (h *SystemHandler) Register(r chi.Router) {
	r.Get("/healthz", h.healthz)
}

func (h *SystemHandler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			checks["postgres"] = err.Error()
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.Health(ctx); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	state := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	httputil.WriteJSON(w, status, map[string]any{"status": state, "checks": checks})
}
