package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lotiva/backend/internal/interfaces/http/dto"
)

const healthCheckTimeout = 3 * time.Second

// Pinger is a dependency the health check can ping
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

// Ping calls f
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	version   string
	database  Pinger
	// optional dependencies, reported but never fail the check
	optional map[string]Pinger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(version string, database Pinger) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		version:   version,
		database:  database,
		optional:  make(map[string]Pinger),
	}
}

// WithDependency registers an optional dependency shown in the health details
func (h *SystemHandler) WithDependency(name string, p Pinger) *SystemHandler {
	if p != nil {
		h.optional[name] = p
	}
	return h
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Lotiva Contracts API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      "Lotiva Contracts API",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Fails with 503 when the database does not answer
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Failure      503 {object} dto.HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := dto.HealthResponse{Status: "healthy", Services: make(map[string]string)}
	status := http.StatusOK

	if h.database == nil {
		resp.Services["database"] = "not configured"
	} else if err := h.database.Ping(ctx); err != nil {
		_ = c.Error(err)
		resp.Status = "unhealthy"
		resp.Services["database"] = "unhealthy"
		status = http.StatusServiceUnavailable
	} else {
		resp.Services["database"] = "healthy"
	}

	for name, p := range h.optional {
		if err := p.Ping(ctx); err != nil {
			_ = c.Error(err)
			resp.Services[name] = "degraded"
			if resp.Status == "healthy" {
				resp.Status = "degraded"
			}
			continue
		}
		resp.Services[name] = "healthy"
	}

	c.JSON(status, resp)
}
