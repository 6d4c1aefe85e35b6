package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"market-dashboard/internal/dashboard/dto"
	"market-dashboard/internal/dashboard/service"
	"market-dashboard/pkg/logger"
)

// WatchlistHandler handles HTTP requests for the watchlist.
type WatchlistHandler struct {
	store  service.MarketStore
	logger *logger.Logger
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(store service.MarketStore, logger *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{store: store, logger: logger}
}

// RegisterRoutes registers the watchlist routes to the Echo group.
func (h *WatchlistHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetWatchlist)
	g.POST("", h.AddToWatchlist)
	g.DELETE("/:id", h.RemoveFromWatchlist)
	g.PUT("/:id/alert", h.SetAlert)
}

// GetWatchlist godoc
// @Summary Get the watchlist
// @Tags watchlist
// @Produce  json
// @Success 200 {array} entity.WatchlistEntry
// @Router /v1/watchlist [get]
func (h *WatchlistHandler) GetWatchlist(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Snapshot().Watchlist)
}

// AddToWatchlist godoc
// @Summary Add a quote to the watchlist
// @Description Adding a quote whose id is already listed is a no-op
// @Tags watchlist
// @Accept  json
// @Produce  json
// @Param   request  body    dto.AddWatchlistRequest  true  "Quote"
// @Success 200 {object} dto.AddWatchlistResponse
// @Success 201 {object} dto.AddWatchlistResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/watchlist [post]
func (h *WatchlistHandler) AddToWatchlist(c echo.Context) error {
	var req dto.AddWatchlistRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	req.Quote.ID = strings.TrimSpace(req.Quote.ID)
	if req.Quote.ID == "" {
		return badRequest(c, "Quote id is required")
	}
	if !req.Quote.Kind.Valid() {
		return badRequest(c, "Invalid asset kind")
	}

	added := h.store.AddToWatchlist(req.Quote)
	status := http.StatusOK
	if added {
		h.logger.InfoContext(c.Request().Context(), "Added to watchlist", logger.StringField("id", req.Quote.ID))
		status = http.StatusCreated
	}
	return c.JSON(status, dto.AddWatchlistResponse{Added: added, Watchlist: h.store.Snapshot().Watchlist})
}

// RemoveFromWatchlist godoc
// @Summary Remove an entry from the watchlist
// @Description Removing an id that is not listed is a no-op
// @Tags watchlist
// @Param   id  path    string true  "Quote ID"
// @Success 204 {object} nil
// @Router /v1/watchlist/{id} [delete]
func (h *WatchlistHandler) RemoveFromWatchlist(c echo.Context) error {
	h.store.RemoveFromWatchlist(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// SetAlert godoc
// @Summary Toggle watchlist alerts
// @Tags watchlist
// @Accept  json
// @Produce  json
// @Param   id       path    string               true  "Quote ID"
// @Param   request  body    dto.SetAlertRequest  true  "Alert flag"
// @Success 200 {object} entity.WatchlistEntry
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/watchlist/{id}/alert [put]
func (h *WatchlistHandler) SetAlert(c echo.Context) error {
	var req dto.SetAlertRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	entry, err := h.store.SetWatchlistAlert(c.Param("id"), req.Enabled)
	if err != nil {
		return respondError(c, h.logger, "Failed to update alert", err)
	}
	return c.JSON(http.StatusOK, entry)
}
