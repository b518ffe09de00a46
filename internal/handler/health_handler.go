package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler serves liveness and info endpoints.
type HealthHandler struct {
	started time.Time
}

// NewHealthHandler records the process start time for uptime reporting.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{started: time.Now()}
}

// HealthResponse is the liveness body.
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

// Health godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	now := time.Now()
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: now.UTC().Format(time.RFC3339),
		Uptime:    now.Sub(h.started).Seconds(),
	})
}

// API godoc
// @Summary API banner
// @Tags health
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /api [get]
func (h *HealthHandler) API(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: "Acquisitions API is running."})
}
