package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"market-dashboard/internal/dashboard/dto"
	"market-dashboard/internal/dashboard/repository"
	"market-dashboard/internal/dashboard/service"
	"market-dashboard/pkg/logger"
)

const (
	defaultChartDays = 7
	maxChartDays     = 365
	maxCoinsLimit    = 250
)

// MarketHandler handles HTTP requests for crypto and equity market data.
type MarketHandler struct {
	store      service.MarketStore
	marketRepo repository.MarketDataRepository
	stockRepo  repository.StockRepository
	logger     *logger.Logger
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(store service.MarketStore, marketRepo repository.MarketDataRepository, stockRepo repository.StockRepository, logger *logger.Logger) *MarketHandler {
	return &MarketHandler{store: store, marketRepo: marketRepo, stockRepo: stockRepo, logger: logger}
}

// RegisterRoutes registers the market routes to the Echo group.
func (h *MarketHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/state", h.GetState)
	g.GET("/global", h.GetGlobalData)

	g.GET("/coins", h.GetTopCoins)
	g.GET("/coins/search", h.SearchCoins)
	g.GET("/coins/:id", h.GetCoin)
	g.GET("/coins/:id/chart", h.GetCoinChart)

	g.GET("/stocks", h.GetTopStocks)
	g.GET("/stocks/search", h.SearchStocks)
	g.GET("/stocks/:symbol", h.GetStock)
}

// GetState godoc
// @Summary Get the dashboard state
// @Description Latest value of every data slot with its loading flag
// @Tags market
// @Produce  json
// @Success 200 {object} service.Snapshot
// @Router /v1/state [get]
func (h *MarketHandler) GetState(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Snapshot())
}

// GetTopCoins godoc
// @Summary Get top coins
// @Description Top coins by market cap. Falls back to a fixed table when the upstream fails
// @Tags coins
// @Produce  json
// @Param   limit  query   int false  "Number of coins"
// @Success 200 {array} entity.Coin
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/coins [get]
func (h *MarketHandler) GetTopCoins(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxCoinsLimit {
			return badRequest(c, "Invalid limit")
		}
		limit = n
	}

	coins, err := h.store.FetchTopCoins(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, h.logger, "Failed to get coins", err)
	}
	return c.JSON(http.StatusOK, coins)
}

// SearchCoins godoc
// @Summary Search coins
// @Tags coins
// @Produce  json
// @Param   q  query   string true  "Search query"
// @Success 200 {array} entity.CoinSearchResult
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/coins/search [get]
func (h *MarketHandler) SearchCoins(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return badRequest(c, "Query is required")
	}

	results, err := h.marketRepo.SearchCoins(c.Request().Context(), q)
	if err != nil {
		return respondError(c, h.logger, "Failed to search coins", err)
	}
	return c.JSON(http.StatusOK, results)
}

// GetCoin godoc
// @Summary Get coin details
// @Description Loads the coin and its 30-day chart, then refreshes sentiment and predictions in the background
// @Tags coins
// @Produce  json
// @Param   id  path    string true  "Coin ID"
// @Success 200 {object} entity.CoinDetail
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/coins/{id} [get]
func (h *MarketHandler) GetCoin(c echo.Context) error {
	coin, err := h.store.FetchCoinDetails(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, "Failed to get coin", err)
	}
	return c.JSON(http.StatusOK, coin)
}

// GetCoinChart godoc
// @Summary Get coin price chart
// @Tags coins
// @Produce  json
// @Param   id    path    string true   "Coin ID"
// @Param   days  query   int    false  "Days of hourly history"
// @Success 200 {object} dto.ChartResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/coins/{id}/chart [get]
func (h *MarketHandler) GetCoinChart(c echo.Context) error {
	days := defaultChartDays
	if raw := c.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxChartDays {
			return badRequest(c, "Invalid days")
		}
		days = n
	}

	id := c.Param("id")
	chart, err := h.marketRepo.GetCoinMarketChart(c.Request().Context(), id, days)
	if err != nil {
		return respondError(c, h.logger, "Failed to get chart", err)
	}
	return c.JSON(http.StatusOK, dto.ChartResponse{ID: id, Days: days, Prices: chart.PriceSeries()})
}

// GetGlobalData godoc
// @Summary Get global market aggregate
// @Tags market
// @Produce  json
// @Success 200 {object} entity.GlobalData
// @Router /v1/global [get]
func (h *MarketHandler) GetGlobalData(c echo.Context) error {
	data, err := h.store.FetchGlobalData(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, "Failed to get global data", err)
	}
	return c.JSON(http.StatusOK, data)
}

// GetTopStocks godoc
// @Summary Get top stocks
// @Tags stocks
// @Produce  json
// @Success 200 {array} entity.Stock
// @Router /v1/stocks [get]
func (h *MarketHandler) GetTopStocks(c echo.Context) error {
	stocks, err := h.store.FetchTopStocks(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, "Failed to get stocks", err)
	}
	return c.JSON(http.StatusOK, stocks)
}

// SearchStocks godoc
// @Summary Search stocks
// @Tags stocks
// @Produce  json
// @Param   q  query   string true  "Symbol or name fragment"
// @Success 200 {array} entity.Stock
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/stocks/search [get]
func (h *MarketHandler) SearchStocks(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return badRequest(c, "Query is required")
	}

	stocks, err := h.stockRepo.SearchStocks(c.Request().Context(), q)
	if err != nil {
		return respondError(c, h.logger, "Failed to search stocks", err)
	}
	return c.JSON(http.StatusOK, stocks)
}

// GetStock godoc
// @Summary Get stock details
// @Description Loads the stock and its 30-day history, then refreshes sentiment and predictions in the background
// @Tags stocks
// @Produce  json
// @Param   symbol  path    string true  "Ticker symbol"
// @Success 200 {object} entity.Stock
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/stocks/{symbol} [get]
func (h *MarketHandler) GetStock(c echo.Context) error {
	stock, err := h.store.FetchStockDetails(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return respondError(c, h.logger, "Failed to get stock", err)
	}
	return c.JSON(http.StatusOK, stock)
}
