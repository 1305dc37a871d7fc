package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-concepts/internal/api/shared"
	"github.com/phrazzld/scry-concepts/internal/redact"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// TaskStats exposes task counts for the readiness probe.
type TaskStats interface {
	TaskCount() int
	QueueDepth() int
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	db          Pinger
	tasks       TaskStats
	pingTimeout time.Duration
	logger      *slog.Logger
}

// NewHealthHandler creates a new HealthHandler. db may be nil.
func NewHealthHandler(db Pinger, tasks TaskStats, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		db:          db,
		tasks:       tasks,
		pingTimeout: 2 * time.Second,
		logger:      logger.With("component", "health_handler"),
	}
}

// Healthz handles GET /healthz.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz handles GET /readyz. It fails while the database is unreachable.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.pingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("readiness check failed", "error", redact.Error(err))
			shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
	}

	resp := HealthResponse{Status: "ready"}
	if h.tasks != nil {
		tasks, depth := h.tasks.TaskCount(), h.tasks.QueueDepth()
		resp.Tasks, resp.QueueDepth = &tasks, &depth
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
