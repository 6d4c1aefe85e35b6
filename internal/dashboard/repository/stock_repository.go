package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market-dashboard/internal/dashboard/config"
	"market-dashboard/internal/entity"
	"market-dashboard/pkg/logger"
	"market-dashboard/pkg/utils"
)

const historyVolatility = 0.02

var mockStocks = []entity.Stock{
	{Symbol: "AAPL", Name: "Apple Inc.", Price: 178.72, Change: 2.35, ChangePercent: 1.33, MarketCap: 2750000000000, Volume: 64500000},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Price: 416.35, Change: 3.78, ChangePercent: 0.92, MarketCap: 3100000000000, Volume: 22100000},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 152.11, Change: -1.23, ChangePercent: -0.8, MarketCap: 1900000000000, Volume: 21600000},
	{Symbol: "AMZN", Name: "Amazon.com, Inc.", Price: 182.41, Change: 0.95, ChangePercent: 0.52, MarketCap: 1880000000000, Volume: 32400000},
	{Symbol: "TSLA", Name: "Tesla, Inc.", Price: 175.35, Change: -3.23, ChangePercent: -1.81, MarketCap: 557000000000, Volume: 95700000},
	{Symbol: "META", Name: "Meta Platforms, Inc.", Price: 490.28, Change: 4.89, ChangePercent: 1.01, MarketCap: 1250000000000, Volume: 12600000},
	{Symbol: "NFLX", Name: "Netflix, Inc.", Price: 628.37, Change: 7.64, ChangePercent: 1.23, MarketCap: 274000000000, Volume: 3800000},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Price: 950.18, Change: 23.45, ChangePercent: 2.53, MarketCap: 2340000000000, Volume: 48200000},
}

type stockRepository struct {
	cfg *config.Config
	log *logger.Logger
	rnd *utils.Random
	now func() time.Time
}

// NewStockRepository creates a StockRepository that synthesizes quotes for a fixed
// set of equities.
func NewStockRepository(cfg *config.Config, log *logger.Logger, rnd *utils.Random) StockRepository {
	if rnd == nil {
		rnd = utils.NewTimeSeededRandom()
	}
	return &stockRepository{cfg: cfg, log: log, rnd: rnd, now: time.Now}
}

func findStock(symbol string) (entity.Stock, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, s := range mockStocks {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return entity.Stock{}, false
}

// jitter moves price by up to ±0.5% and the change figures by up to ±5%.
func (r *stockRepository) jitter(s entity.Stock) entity.Stock {
	s.Price *= 1 + (r.rnd.Float64()-0.5)*0.01
	s.Change *= 1 + (r.rnd.Float64()-0.5)*0.1
	s.ChangePercent *= 1 + (r.rnd.Float64()-0.5)*0.1
	return s
}

func (r *stockRepository) latency(ctx context.Context) error {
	if !utils.SleepContext(ctx, r.cfg.Stocks.SimulatedLatency) {
		return ctx.Err()
	}
	return nil
}

func (r *stockRepository) GetTopStocks(ctx context.Context) ([]entity.Stock, error) {
	if err := r.latency(ctx); err != nil {
		return nil, err
	}

	stocks := make([]entity.Stock, 0, len(mockStocks))
	for _, s := range mockStocks {
		stocks = append(stocks, r.jitter(s))
	}
	return stocks, nil
}

func (r *stockRepository) GetStock(ctx context.Context, symbol string) (*entity.Stock, error) {
	if err := r.latency(ctx); err != nil {
		return nil, err
	}

	s, ok := findStock(symbol)
	if !ok {
		r.log.DebugContext(ctx, "Unknown stock symbol", logger.StringField("symbol", symbol))
		return nil, fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
	}
	s = r.jitter(s)
	return &s, nil
}

// GetHistoricalData returns days+1 daily candles ending today, produced by a random
// walk with 2% daily volatility from the current price.
func (r *stockRepository) GetHistoricalData(ctx context.Context, symbol string, days int) ([]entity.Candle, error) {
	if err := r.latency(ctx); err != nil {
		return nil, err
	}

	s, ok := findStock(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
	}
	if days < 0 {
		days = 0
	}

	now := r.now().UTC()
	price := s.Price
	candles := make([]entity.Candle, 0, days+1)
	for i := days; i >= 0; i-- {
		volatility := price * historyVolatility
		open := price + (r.rnd.Float64()-0.5)*volatility
		high := open + r.rnd.Float64()*volatility
		low := open - r.rnd.Float64()*volatility
		closePrice := low + r.rnd.Float64()*(high-low)
		price = closePrice

		candles = append(candles, entity.Candle{
			Date:   now.AddDate(0, 0, -i).Format(time.DateOnly),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: int64(r.rnd.IntN(10000000)) + 1000000,
		})
	}
	return candles, nil
}

func (r *stockRepository) SearchStocks(ctx context.Context, query string) ([]entity.Stock, error) {
	if err := r.latency(ctx); err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	results := make([]entity.Stock, 0)
	for _, s := range mockStocks {
		if strings.Contains(strings.ToLower(s.Symbol), q) || strings.Contains(strings.ToLower(s.Name), q) {
			results = append(results, s)
		}
	}
	return results, nil
}
