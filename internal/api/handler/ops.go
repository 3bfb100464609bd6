// Package handler provides HTTP handlers for the cityweather JSON API.
package handler

import (
	"net/http"
	"strconv"

	"github.com/cityweather/cityweather/internal/api/models"
	"github.com/cityweather/cityweather/internal/api/response"
	"github.com/cityweather/cityweather/internal/provider/resilience"
)

// SessionCounter reports the number of live browser sessions.
type SessionCounter interface {
	Len() int
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	sessions  SessionCounter
}

// NewOpsHandler creates a new OpsHandler. registry and sessions may be nil.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, sessions SessionCounter) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		sessions:  sessions,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Now(),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
// The service is not ready while every upstream provider has an open circuit.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.registry != nil && !h.registry.Available() {
		response.ServiceUnavailable(w, r, "all upstream providers are unavailable")
		return
	}

	health := models.Health{
		Status: overallStatus(h.providerStatuses()),
		Time:   models.Now(),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	providers := h.providerStatuses()

	var subsystems []models.SubsystemStatus
	if h.sessions != nil {
		detail := strconv.Itoa(h.sessions.Len()) + " active"
		subsystems = append(subsystems, models.SubsystemStatus{
			Name:   "sessions",
			Status: models.HealthStatusOK,
			Detail: &detail,
		})
	}

	status := models.SystemStatus{
		Status:     overallStatus(providers),
		Time:       models.Now(),
		Subsystems: subsystems,
		Providers:  providers,
	}
	if status.Subsystems == nil {
		status.Subsystems = []models.SubsystemStatus{}
	}
	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) providerStatuses() []models.ProviderStatus {
	statuses := []models.ProviderStatus{}
	if h.registry == nil {
		return statuses
	}

	for _, health := range h.registry.GetAllHealth() {
		ps := models.ProviderStatus{
			Provider:     health.Name,
			Status:       models.HealthStatusOK,
			CircuitState: health.CircuitState.String(),
		}
		switch {
		case health.IsUnhealthy():
			ps.Status = models.HealthStatusFail
		case health.IsDegraded():
			ps.Status = models.HealthStatusDegraded
		}
		ps.LastSuccessAt = models.TimestampPtr(health.LastSuccessAt)
		ps.LastFailureAt = models.TimestampPtr(health.LastFailureAt)
		if health.LastError != "" {
			msg := health.LastError
			ps.Message = &msg
		}
		statuses = append(statuses, ps)
	}
	return statuses
}

func overallStatus(providers []models.ProviderStatus) models.HealthStatus {
	status := models.HealthStatusOK
	for _, p := range providers {
		switch p.Status {
		case models.HealthStatusFail:
			return models.HealthStatusFail
		case models.HealthStatusDegraded:
			status = models.HealthStatusDegraded
		}
	}
	return status
}
