package handlers

import (
	"net/http"
	"time"

	"github.com/investorcenter/icengine/pkg/database"
	"github.com/investorcenter/icengine/pkg/logger"
	"github.com/investorcenter/icengine/pkg/redis"
)

// HealthHandler reports service and dependency health.
type HealthHandler struct {
	db     *database.DB
	cache  *redis.Client
	logger *logger.Logger
}

func NewHealthHandler(db *database.DB, cache *redis.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, logger: log}
}

// Health checks the database and reports pool stats.
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, err := h.db.HealthCheck(r.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Database health check failed")
	}

	body := map[string]interface{}{
		"service":   "icengine",
		"timestamp": time.Now().UTC(),
		"database":  status,
		"redis":     h.cache.Enabled(),
	}

	code := http.StatusOK
	if status == nil || !status.Healthy {
		body["status"] = "degraded"
		code = http.StatusServiceUnavailable
	} else {
		body["status"] = "ok"
	}
	respondJSON(w, code, body)
}
