package api

import (
	"net/http"
	"time"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
)

// HealthHandler reports process liveness.
type HealthHandler struct {
	version     string
	environment string
	startedAt   time.Time
	now         func() time.Time
}

// NewHealthHandler creates a HealthHandler whose uptime counts from startedAt.
func NewHealthHandler(version, environment string, startedAt time.Time) *HealthHandler {
	return &HealthHandler{
		version:     version,
		environment: environment,
		startedAt:   startedAt,
		now:         time.Now,
	}
}

// Health handles GET /health requests
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	shared.RespondWithData(w, r, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Timestamp:   now.UTC().Format(time.RFC3339Nano),
		Uptime:      now.Sub(h.startedAt).Seconds(),
		Version:     h.version,
		Environment: h.environment,
	}, "")
}
