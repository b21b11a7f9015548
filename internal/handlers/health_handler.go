package handlers

import (
	"context"
	"net/http"
	"time"

	"logiscore/internal/config"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service health
type HealthHandler struct {
	db  Pinger
	app config.AppConfig
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, app config.AppConfig) *HealthHandler {
	return &HealthHandler{db: db, app: app}
}

// HealthResponse is the body of the health check
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version"`
}

// Health checks the database connection
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Database: "up", Version: h.app.Version}
	if err := h.db.PingContext(ctx); err != nil {
		resp.Status, resp.Database = "unhealthy", "down"
		respondWithJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
