package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"market-dashboard/internal/dashboard/config"
	delivery "market-dashboard/internal/dashboard/delivery/http"
	"market-dashboard/internal/dashboard/repository"
	"market-dashboard/internal/dashboard/service"
	"market-dashboard/pkg/logger"
	"market-dashboard/pkg/redis"
	"market-dashboard/pkg/telegram"
	"market-dashboard/pkg/utils"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the market dashboard service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Market Dashboard Service",
		logger.Field("name", cfg.App.Name),
		logger.Field("env", cfg.App.Env),
		logger.Field("version", cfg.App.Version))

	// Redis is optional; without it the credential lives in process memory.
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer redisClient.Close()
	}

	var notifier telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	rnd := utils.NewTimeSeededRandom()

	// Initialize repositories
	marketRepo := repository.NewCoinGeckoRepository(cfg, appLogger, &http.Client{}, rnd)
	stockRepo := repository.NewStockRepository(cfg, appLogger, rnd)
	socialRepo := repository.NewSocialMediaRepository(appLogger, rnd)
	aiRepo := repository.NewGeminiAIRepository(cfg, appLogger, &http.Client{})
	credentialRepo := repository.NewCredentialRepository(cfg, appLogger, redisClient)

	// Initialize services
	store := service.NewMarketStore(cfg, appLogger, marketRepo, stockRepo, socialRepo, service.NewPredictionService(rnd))
	valuationSvc := service.NewValuationService(appLogger, rnd, store)
	chatSvc := service.NewChatService(cfg, appLogger, aiRepo, credentialRepo)

	alertSvc, err := service.NewAlertService(cfg, appLogger, store, notifier)
	if err != nil {
		appLogger.Fatal("Failed to initialize alert service", logger.ErrorField(err))
	}

	// Warm the dashboard slots the way the page does on mount.
	go alertSvc.Refresh(ctx)
	if cfg.Refresh.Enabled {
		go alertSvc.Start(ctx)
	}

	e := delivery.NewRouter(cfg, appLogger, delivery.Dependencies{
		Store:      store,
		MarketRepo: marketRepo,
		StockRepo:  stockRepo,
		SocialRepo: socialRepo,
		Valuations: valuationSvc,
		Chat:       chatSvc,
	})

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	store.Wait()

	appLogger.Info("Server exiting")
}

// @title Market Dashboard API
// @version 1.0
// @description Crypto and equity market data, sentiment, forecasts, watchlist and assistant chat.
// @BasePath /api
func main() {
	rootCmd := &cobra.Command{Use: "dashboard-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-dashboard.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing dashboard-service CLI: %s\n", err)
		os.Exit(1)
	}
}
