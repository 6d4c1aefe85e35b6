package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-dashboard/internal/dashboard/config"
	"market-dashboard/internal/entity"
	"market-dashboard/pkg/logger"
	"market-dashboard/pkg/utils"
)

type failingTransport struct {
	calls atomic.Int32
}

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls.Add(1)
	return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
}

func testMarketConfig(baseURL string) *config.Config {
	return &config.Config{
		CoinGecko: config.CoinGecko{
			BaseURL:          baseURL,
			Timeout:          2 * time.Second,
			TopCoinsLimit:    20,
			ImageDomains:     []string{"assets.coingecko.com"},
			GlobalTimeout:    time.Second,
			GlobalMaxRetries: 3,
			GlobalRetryDelay: time.Millisecond,
			GlobalBackoff:    "linear",
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestCoinGeckoRepository_GetTopCoins(t *testing.T) {
	t.Run("decodes listing and filters image hosts", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/coins/markets", r.URL.Path)
			assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
			assert.Equal(t, "2", r.URL.Query().Get("per_page"))
			writeJSON(w, http.StatusOK, []map[string]interface{}{
				{"id": "bitcoin", "symbol": "btc", "name": "Bitcoin", "current_price": 70000.5,
					"image": "https://assets.coingecko.com/coins/images/1/large/bitcoin.png"},
				{"id": "evil", "symbol": "evl", "name": "Evil", "current_price": 1,
					"image": "https://tracker.example.com/pixel.png"},
			})
		}))
		defer srv.Close()

		repo := NewCoinGeckoRepository(testMarketConfig(srv.URL), logger.NewNop(), srv.Client(), utils.NewRandom(1))
		coins, err := repo.GetTopCoins(context.Background(), 2)
		require.NoError(t, err)
		require.Len(t, coins, 2)
		assert.Equal(t, 70000.5, coins[0].CurrentPrice)
		assert.Equal(t, "https://assets.coingecko.com/coins/images/1/large/bitcoin.png", coins[0].Image)
		assert.Empty(t, coins[1].Image)
	})

	t.Run("non-2xx serves complete fallback rows", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
		}))
		defer srv.Close()

		repo := NewCoinGeckoRepository(testMarketConfig(srv.URL), logger.NewNop(), srv.Client(), utils.NewRandom(1))
		coins, err := repo.GetTopCoins(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, coins, 5)
		assert.EqualValues(t, 1, calls.Load())

		for _, c := range coins {
			assert.NotEmpty(t, c.ID)
			assert.NotEmpty(t, c.Name)
			assert.NotEmpty(t, c.Symbol)
			assert.NotEmpty(t, c.Image)
			assert.NotEmpty(t, c.LastUpdated)
			assert.Positive(t, c.CurrentPrice)
			assert.Positive(t, c.MarketCap)
			assert.Positive(t, c.TotalVolume)
			require.NotNil(t, c.SparklineIn7d)
			assert.Len(t, c.SparklineIn7d.Price, sparklinePoints)
		}
		assert.Equal(t, "bitcoin", coins[0].ID)
	})

	t.Run("transport failure on quote path is not retried by default", func(t *testing.T) {
		tr := &failingTransport{}
		repo := NewCoinGeckoRepository(testMarketConfig("http://coingecko.invalid"), logger.NewNop(), &http.Client{Transport: tr}, utils.NewRandom(1))
		coins, err := repo.GetTopCoins(context.Background(), 3)
		require.NoError(t, err)
		require.Len(t, coins, 3)
		assert.EqualValues(t, 1, tr.calls.Load())
	})
}

func TestCoinGeckoRepository_GetCoin(t *testing.T) {
	tr := &failingTransport{}
	repo := NewCoinGeckoRepository(testMarketConfig("http://coingecko.invalid"), logger.NewNop(), &http.Client{Transport: tr}, utils.NewRandom(1))

	t.Run("known id falls back", func(t *testing.T) {
		detail, err := repo.GetCoin(context.Background(), "ethereum")
		require.NoError(t, err)
		assert.Equal(t, "Ethereum", detail.Name)
		q := detail.Quote()
		assert.Equal(t, 3458.93, q.Price)
		assert.Equal(t, entity.AssetKindCrypto, q.Kind)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.GetCoin(context.Background(), "dogecoin")
		require.ErrorIs(t, err, ErrCoinNotFound)
	})
}

func TestCoinGeckoRepository_GetCoinMarketChart(t *testing.T) {
	tr := &failingTransport{}
	repo := NewCoinGeckoRepository(testMarketConfig("http://coingecko.invalid"), logger.NewNop(), &http.Client{Transport: tr}, utils.NewRandom(7))

	t.Run("hourly samples around base price", func(t *testing.T) {
		chart, err := repo.GetCoinMarketChart(context.Background(), "bitcoin", 2)
		require.NoError(t, err)
		require.Len(t, chart.Prices, 48)
		require.Len(t, chart.MarketCaps, 48)
		require.Len(t, chart.TotalVolumes, 48)
		for _, p := range chart.Prices {
			assert.InDelta(t, 63000, p[1], 2000)
		}
		series := chart.PriceSeries()
		assert.True(t, series[0].Timestamp.Before(series[len(series)-1].Timestamp))
	})

	t.Run("unknown id uses default base", func(t *testing.T) {
		chart, err := repo.GetCoinMarketChart(context.Background(), "unknown-coin", 1)
		require.NoError(t, err)
		require.Len(t, chart.Prices, 24)
		for _, p := range chart.Prices {
			assert.InDelta(t, defaultChartBasePrice, p[1], defaultChartVolatility)
		}
	})
}

func TestCoinGeckoRepository_GetGlobalData(t *testing.T) {
	t.Run("returns unwrapped data with cache-busting param", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/global", r.URL.Path)
			assert.NotEmpty(t, r.URL.Query().Get("_t"))
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"data": map[string]interface{}{
					"active_cryptocurrencies": 12345,
					"markets":                 900,
					"total_market_cap":        map[string]float64{"usd": 3e12},
					"updated_at":              1700000000,
				},
			})
		}))
		defer srv.Close()

		repo := NewCoinGeckoRepository(testMarketConfig(srv.URL), logger.NewNop(), srv.Client(), utils.NewRandom(1))
		data, err := repo.GetGlobalData(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 12345, data.ActiveCryptocurrencies)
		assert.Equal(t, 3e12, data.TotalMarketCap["usd"])
		assert.Equal(t, int64(1700000000), data.UpdatedTime().Unix())
	})

	t.Run("three failed retries yield exactly one fallback", func(t *testing.T) {
		tr := &failingTransport{}
		repo := NewCoinGeckoRepository(testMarketConfig("http://coingecko.invalid"), logger.NewNop(), &http.Client{Transport: tr}, utils.NewRandom(1))

		data, err := repo.GetGlobalData(context.Background())
		require.NoError(t, err)
		require.NotNil(t, data)
		assert.EqualValues(t, 4, tr.calls.Load())
		assert.Equal(t, 10000, data.ActiveCryptocurrencies)
		assert.Equal(t, 51.7, data.MarketCapPercentage["btc"])
	})

	t.Run("hanging upstream times out each attempt then falls back once", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		cfg := testMarketConfig(srv.URL)
		cfg.CoinGecko.GlobalTimeout = 50 * time.Millisecond

		repo := NewCoinGeckoRepository(cfg, logger.NewNop(), srv.Client(), utils.NewRandom(1))
		start := time.Now()
		data, err := repo.GetGlobalData(context.Background())
		require.NoError(t, err)
		require.NotNil(t, data)
		assert.EqualValues(t, 4, calls.Load())
		assert.Equal(t, 10000, data.ActiveCryptocurrencies)
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("status errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
		}))
		defer srv.Close()

		repo := NewCoinGeckoRepository(testMarketConfig(srv.URL), logger.NewNop(), srv.Client(), utils.NewRandom(1))
		data, err := repo.GetGlobalData(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 10000, data.ActiveCryptocurrencies)
		assert.EqualValues(t, 1, calls.Load())
	})
}

func TestCoinGeckoRepository_SearchCoins(t *testing.T) {
	tr := &failingTransport{}
	repo := NewCoinGeckoRepository(testMarketConfig("http://coingecko.invalid"), logger.NewNop(), &http.Client{Transport: tr}, utils.NewRandom(1))

	results, err := repo.SearchCoins(context.Background(), "SOL")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "solana", results[0].ID)

	results, err = repo.SearchCoins(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCoinGeckoRepository_DoesNotShareTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"slow answer"}]}}]}`))
	}))
	defer srv.Close()

	shared := &http.Client{}
	cfg := testMarketConfig("http://coingecko.invalid")
	cfg.CoinGecko.Timeout = 100 * time.Millisecond
	cfg.Gemini.BaseURL = srv.URL

	_ = NewCoinGeckoRepository(cfg, logger.NewNop(), shared, utils.NewRandom(1))
	assert.Zero(t, shared.Timeout)

	ai := NewGeminiAIRepository(cfg, logger.NewNop(), shared)
	text, err := ai.Generate(context.Background(), "secret-key", GenerateRequest{
		Model:           "gemini-1.5-pro",
		Contents:        []entity.ChatMessage{{Role: entity.ChatRoleUser, Text: "hi"}},
		MaxOutputTokens: 800,
		Temperature:     0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "slow answer", text)
}
