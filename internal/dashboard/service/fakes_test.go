package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"market-dashboard/internal/dashboard/repository"
	"market-dashboard/internal/entity"
)

type fakeMarketRepo struct {
	coins  []entity.Coin
	global *entity.GlobalData
	// gate, when set, is read once per GetTopCoins call before returning.
	gate chan []entity.Coin

	topCalls atomic.Int32
}

func (f *fakeMarketRepo) GetTopCoins(ctx context.Context, limit int) ([]entity.Coin, error) {
	f.topCalls.Add(1)
	if f.gate != nil {
		select {
		case coins := <-f.gate:
			return coins, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if limit < len(f.coins) {
		return f.coins[:limit], nil
	}
	return f.coins, nil
}

func (f *fakeMarketRepo) GetCoin(_ context.Context, id string) (*entity.CoinDetail, error) {
	for _, c := range f.coins {
		if c.ID == id {
			return &entity.CoinDetail{
				ID: c.ID, Symbol: c.Symbol, Name: c.Name,
				MarketData: entity.CoinMarketData{CurrentPrice: map[string]float64{"usd": c.CurrentPrice}},
			}, nil
		}
	}
	return nil, repository.ErrCoinNotFound
}

func (f *fakeMarketRepo) GetCoinMarketChart(_ context.Context, _ string, days int) (*entity.MarketChart, error) {
	chart := &entity.MarketChart{}
	for i := 0; i < days; i++ {
		chart.Prices = append(chart.Prices, [2]float64{float64(i * 86400000), float64(100 + i)})
	}
	return chart, nil
}

func (f *fakeMarketRepo) GetGlobalData(context.Context) (*entity.GlobalData, error) {
	return f.global, nil
}

func (f *fakeMarketRepo) SearchCoins(_ context.Context, query string) ([]entity.CoinSearchResult, error) {
	out := []entity.CoinSearchResult{}
	for _, c := range f.coins {
		if strings.Contains(c.ID, strings.ToLower(query)) {
			out = append(out, entity.CoinSearchResult{ID: c.ID, Name: c.Name, Symbol: c.Symbol})
		}
	}
	return out, nil
}

type fakeStockRepo struct {
	stocks []entity.Stock
}

func (f *fakeStockRepo) GetTopStocks(context.Context) ([]entity.Stock, error) {
	return f.stocks, nil
}

func (f *fakeStockRepo) GetStock(_ context.Context, symbol string) (*entity.Stock, error) {
	for _, s := range f.stocks {
		if s.Symbol == symbol {
			s := s
			return &s, nil
		}
	}
	return nil, repository.ErrStockNotFound
}

func (f *fakeStockRepo) GetHistoricalData(_ context.Context, symbol string, days int) ([]entity.Candle, error) {
	if _, err := f.GetStock(context.Background(), symbol); err != nil {
		return nil, err
	}
	return make([]entity.Candle, days+1), nil
}

func (f *fakeStockRepo) SearchStocks(context.Context, string) ([]entity.Stock, error) {
	return f.stocks, nil
}

type fakeSocialRepo struct {
	mu     sync.Mutex
	assets []string
}

func (f *fakeSocialRepo) GetSocialSentiment(_ context.Context, asset string) (*entity.SocialSentiment, error) {
	f.mu.Lock()
	f.assets = append(f.assets, asset)
	f.mu.Unlock()
	return &entity.SocialSentiment{Asset: asset, OverallSentiment: 0.1, MarketMood: entity.MoodNeutral, Volume: 15}, nil
}

func (f *fakeSocialRepo) GetQuickSentiment(_ context.Context, asset string) (*entity.QuickSentiment, error) {
	return &entity.QuickSentiment{Asset: asset, Trend: entity.TrendNeutral}, nil
}

type fakePredictions struct{}

func (fakePredictions) Generate(asset string) entity.Predictions {
	return entity.Predictions{
		Forecast:       &entity.Forecast{Asset: asset, Direction: entity.DirectionUp, Confidence: 0.7, TargetChange: 3.5},
		RiskAssessment: &entity.RiskAssessment{VolatilityScore: 30, MarketRisk: entity.RiskMedium, StabilityIndex: 0.7},
	}
}

// fakeAI records calls and answers from a scripted list of results per model.
type fakeAI struct {
	mu       sync.Mutex
	requests []repository.GenerateRequest
	keys     []string
	// results maps model -> queued (text, err) results.
	results map[string][]fakeResult
}

type fakeResult struct {
	text string
	err  error
}

var errFakeModel = errors.New("model unavailable")

func (f *fakeAI) Generate(_ context.Context, apiKey string, req repository.GenerateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	f.keys = append(f.keys, apiKey)

	queue := f.results[req.Model]
	if len(queue) == 0 {
		return "", errFakeModel
	}
	res := queue[0]
	f.results[req.Model] = queue[1:]
	return res.text, res.err
}

func (f *fakeAI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type memCredentials struct {
	mu    sync.Mutex
	value string
}

func (m *memCredentials) Get(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

func (m *memCredentials) Set(_ context.Context, v string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = v
	return nil
}

func (m *memCredentials) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = ""
	return nil
}
