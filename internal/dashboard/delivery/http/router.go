package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	swagger "github.com/swaggo/echo-swagger"

	"market-dashboard/internal/dashboard/config"
	_ "market-dashboard/internal/dashboard/docs"
	"market-dashboard/internal/dashboard/repository"
	"market-dashboard/internal/dashboard/service"
	"market-dashboard/pkg/logger"
)

// Dependencies are the services and repositories the HTTP API is served from.
type Dependencies struct {
	Store      service.MarketStore
	MarketRepo repository.MarketDataRepository
	StockRepo  repository.StockRepository
	SocialRepo repository.SocialMediaRepository
	Valuations service.ValuationService
	Chat       service.ChatService
}

// NewRouter builds the Echo instance with middleware and every route registered.
func NewRouter(cfg *config.Config, log *logger.Logger, deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(RequestID())
	e.Use(RequestLogger(log))

	api := e.Group("/api")
	NewHealthHandler(cfg).RegisterRoutes(api)

	apiV1 := api.Group("/v1")
	NewMarketHandler(deps.Store, deps.MarketRepo, deps.StockRepo, log).RegisterRoutes(apiV1)
	NewInsightHandler(deps.Store, deps.SocialRepo, deps.Valuations, log).RegisterRoutes(apiV1)
	NewWatchlistHandler(deps.Store, log).RegisterRoutes(apiV1.Group("/watchlist"))
	NewChatHandler(deps.Chat, log).RegisterRoutes(apiV1.Group("/chat"))

	e.GET("/swagger/*", swagger.WrapHandler)
	return e
}
