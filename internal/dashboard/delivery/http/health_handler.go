package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"market-dashboard/internal/dashboard/config"
	"market-dashboard/internal/dashboard/dto"
	"market-dashboard/pkg/utils"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	cfg *config.Config
	now func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg, now: utils.TimeNowUTC}
}

// RegisterRoutes registers the health route to the Echo group.
func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
}

// Health godoc
// @Summary Health probe
// @Description Reports liveness with the deployment environment and version
// @Tags health
// @Produce  json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	header := c.Response().Header()
	header.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	header.Set("Pragma", "no-cache")
	header.Set("Expires", "0")

	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:      "ok",
		Time:        h.now(),
		Environment: h.cfg.App.Env,
		Version:     h.cfg.App.Version,
	})
}
