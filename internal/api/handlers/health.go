package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/utils"
)

// Pinger is a dependency whose reachability gates readiness
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db     *sql.DB
	locks  Pinger
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler. locks may be nil when
// order locks are kept in memory.
func NewHealthHandler(db *sql.DB, locks Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		locks:  locks,
		logger: log,
	}
}

// Healthz handles liveness probe
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is alive"
// @Router /health [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Readyz handles readiness probe
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is ready"
// @Failure 503 {object} utils.ErrorResponse "Service unavailable"
// @Router /readyz [get]
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.ErrorWithErr(err, "Database ping failed")
		utils.WriteErrorMessage(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Database connection failed")
		return
	}

	status := map[string]string{
		"status":   "ready",
		"database": "connected",
		"locks":    "memory",
	}
	if h.locks != nil {
		if err := h.locks.Ping(ctx); err != nil {
			h.logger.ErrorWithErr(err, "Redis ping failed")
			utils.WriteErrorMessage(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Lock store connection failed")
			return
		}
		status["locks"] = "redis"
	}

	utils.WriteSuccess(w, http.StatusOK, status)
}
