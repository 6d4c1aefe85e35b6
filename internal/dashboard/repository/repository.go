package repository

import (
	"context"
	"errors"

	"market-dashboard/internal/entity"
)

var (
	// ErrCoinNotFound is returned when a coin is neither available upstream nor in
	// the fallback table.
	ErrCoinNotFound = errors.New("coin not found")
	// ErrStockNotFound is returned for an unknown equity symbol.
	ErrStockNotFound = errors.New("stock not found")
	// ErrUpstreamStatus marks a non-2xx response from an upstream API.
	ErrUpstreamStatus = errors.New("upstream returned non-OK status")
)

// MarketDataRepository retrieves crypto market data. Every method substitutes a
// fallback record when the upstream call fails.
type MarketDataRepository interface {
	GetTopCoins(ctx context.Context, limit int) ([]entity.Coin, error)
	GetCoin(ctx context.Context, id string) (*entity.CoinDetail, error)
	GetCoinMarketChart(ctx context.Context, id string, days int) (*entity.MarketChart, error)
	GetGlobalData(ctx context.Context) (*entity.GlobalData, error)
	SearchCoins(ctx context.Context, query string) ([]entity.CoinSearchResult, error)
}

// StockRepository serves the synthesized equity feed.
type StockRepository interface {
	GetTopStocks(ctx context.Context) ([]entity.Stock, error)
	GetStock(ctx context.Context, symbol string) (*entity.Stock, error)
	GetHistoricalData(ctx context.Context, symbol string, days int) ([]entity.Candle, error)
	SearchStocks(ctx context.Context, query string) ([]entity.Stock, error)
}

// SocialMediaRepository serves the synthesized social sentiment feed.
type SocialMediaRepository interface {
	GetSocialSentiment(ctx context.Context, asset string) (*entity.SocialSentiment, error)
	GetQuickSentiment(ctx context.Context, asset string) (*entity.QuickSentiment, error)
}

// GenerateRequest is one call to the hosted text-generation API.
type GenerateRequest struct {
	Model           string
	Contents        []entity.ChatMessage
	MaxOutputTokens int
	Temperature     float64
}

// AIRepository talks to the hosted text-generation API with a caller-supplied key.
type AIRepository interface {
	Generate(ctx context.Context, apiKey string, req GenerateRequest) (string, error)
}

// CredentialRepository stores the single user-supplied generative-text credential.
// Get returns an empty string when nothing is stored.
type CredentialRepository interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, value string) error
	Clear(ctx context.Context) error
}
