package handlers

import (
	"net/http"

	"github.com/BlockchainHB/launchfast-sub005/pkg/database"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
	"github.com/BlockchainHB/launchfast-sub005/pkg/redis"
)

// HealthHandler reports service health
type HealthHandler struct {
	db     *database.DB
	redis  *redis.Client
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, redisClient *redis.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		logger: log,
	}
}

// Check returns server health status
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := map[string]interface{}{
		"status":  "ok",
		"service": "launchfast-research",
	}

	dbStatus, err := h.db.HealthCheck(ctx)
	if err != nil || !dbStatus.Healthy {
		h.logger.WithError(err).Error("Database health check failed")
		resp["status"] = "degraded"
		resp["database"] = "unhealthy"
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp["database"] = dbStatus

	// Cache is optional; a dead redis degrades but does not fail health
	if h.redis.Enabled() {
		if err := h.redis.Ping(ctx); err != nil {
			h.logger.WithError(err).Warn("Redis health check failed")
			resp["redis"] = "unhealthy"
		} else {
			resp["redis"] = "ok"
		}
	} else {
		resp["redis"] = "disabled"
	}

	respondJSON(w, http.StatusOK, resp)
}
