package handlers

import (
	"net/http"
	"time"

	"github.com/jababox/jababox/pkg/blob"
	"github.com/jababox/jababox/pkg/storage/store"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	metadata store.Store
	blobs    blob.Store
}

// NewHealthHandler creates a health handler over the two stores.
func NewHealthHandler(metadata store.Store, blobs blob.Store) *HealthHandler {
	return &HealthHandler{
		metadata: metadata,
		blobs:    blobs,
	}
}

// Liveness reports that the process is up. It never touches the stores.
//
// GET /health
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	})
}

// Readiness reports whether both stores answer their health checks.
//
// GET /health/ready
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"metadata": "healthy",
		"bytes":    "healthy",
	}
	healthy := true

	if err := h.metadata.HealthCheck(); err != nil {
		checks["metadata"] = err.Error()
		healthy = false
	}
	if err := h.blobs.HealthCheck(r.Context()); err != nil {
		checks["bytes"] = err.Error()
		healthy = false
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, Response{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Data:      checks,
	})
}
