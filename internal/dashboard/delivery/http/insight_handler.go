package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"market-dashboard/internal/dashboard/dto"
	"market-dashboard/internal/dashboard/repository"
	"market-dashboard/internal/dashboard/service"
	"market-dashboard/internal/entity"
	"market-dashboard/pkg/logger"
)

// InsightHandler handles sentiment, forecast and valuation requests.
type InsightHandler struct {
	store      service.MarketStore
	socialRepo repository.SocialMediaRepository
	valuations service.ValuationService
	logger     *logger.Logger
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(store service.MarketStore, socialRepo repository.SocialMediaRepository, valuations service.ValuationService, logger *logger.Logger) *InsightHandler {
	return &InsightHandler{store: store, socialRepo: socialRepo, valuations: valuations, logger: logger}
}

// RegisterRoutes registers the insight routes to the Echo group.
func (h *InsightHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/sentiment/quick", h.GetQuickSentiment)
	g.GET("/sentiment/:kind", h.GetSocialSentiment)

	g.GET("/predictions", h.GetPredictions)
	g.POST("/predictions", h.GeneratePredictions)

	g.GET("/valuations", h.GetValuationCatalogue)
	g.POST("/valuations", h.ProjectValuation)
}

// GetSocialSentiment godoc
// @Summary Get social sentiment
// @Description Synthesizes and scores social posts about an asset and stores the result in the slot of the given kind
// @Tags sentiment
// @Produce  json
// @Param   kind   path    string true  "Asset kind (crypto or stocks)"
// @Param   asset  query   string true  "Asset name"
// @Success 200 {object} entity.SocialSentiment
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/sentiment/{kind} [get]
func (h *InsightHandler) GetSocialSentiment(c echo.Context) error {
	asset := strings.TrimSpace(c.QueryParam("asset"))
	if asset == "" {
		return badRequest(c, "Asset is required")
	}

	sentiment, err := h.store.FetchSocialSentiment(c.Request().Context(), asset, entity.AssetKind(c.Param("kind")))
	if err != nil {
		return respondError(c, h.logger, "Failed to get sentiment", err)
	}
	return c.JSON(http.StatusOK, sentiment)
}

// GetQuickSentiment godoc
// @Summary Get quick sentiment
// @Tags sentiment
// @Produce  json
// @Param   asset  query   string true  "Asset name"
// @Success 200 {object} entity.QuickSentiment
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/sentiment/quick [get]
func (h *InsightHandler) GetQuickSentiment(c echo.Context) error {
	asset := strings.TrimSpace(c.QueryParam("asset"))
	if asset == "" {
		return badRequest(c, "Asset is required")
	}

	sentiment, err := h.socialRepo.GetQuickSentiment(c.Request().Context(), asset)
	if err != nil {
		return respondError(c, h.logger, "Failed to get sentiment", err)
	}
	return c.JSON(http.StatusOK, sentiment)
}

// GetPredictions godoc
// @Summary Get the latest predictions
// @Tags predictions
// @Produce  json
// @Success 200 {object} entity.Predictions
// @Router /v1/predictions [get]
func (h *InsightHandler) GetPredictions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Snapshot().AIPredictions)
}

// GeneratePredictions godoc
// @Summary Generate predictions
// @Description Generates a short-term forecast and risk assessment for an asset
// @Tags predictions
// @Accept  json
// @Produce  json
// @Param   request  body    dto.PredictionRequest  true  "Asset"
// @Success 200 {object} entity.Predictions
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/predictions [post]
func (h *InsightHandler) GeneratePredictions(c echo.Context) error {
	var req dto.PredictionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	asset := strings.TrimSpace(req.Asset)
	if asset == "" {
		return badRequest(c, "Asset is required")
	}
	return c.JSON(http.StatusOK, h.store.GenerateAIPredictions(c.Request().Context(), asset))
}

// GetValuationCatalogue godoc
// @Summary List assets available for valuation
// @Tags valuations
// @Produce  json
// @Success 200 {array} service.ValuationAsset
// @Router /v1/valuations [get]
func (h *InsightHandler) GetValuationCatalogue(c echo.Context) error {
	return c.JSON(http.StatusOK, h.valuations.Catalogue())
}

// ProjectValuation godoc
// @Summary Project a long-horizon valuation
// @Tags valuations
// @Accept  json
// @Produce  json
// @Param   request  body    dto.ValuationRequest  true  "Asset and target year"
// @Success 200 {object} entity.ValuationProjection
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/valuations [post]
func (h *InsightHandler) ProjectValuation(c echo.Context) error {
	var req dto.ValuationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	projection, err := h.valuations.Project(c.Request().Context(), req.AssetID, req.TargetYear)
	if err != nil {
		return respondError(c, h.logger, "Failed to project valuation", err)
	}
	return c.JSON(http.StatusOK, projection)
}
