package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-dashboard/internal/dashboard/config"
	"market-dashboard/pkg/logger"
	"market-dashboard/pkg/utils"
)

func newTestStockRepository() StockRepository {
	return NewStockRepository(&config.Config{}, logger.NewNop(), utils.NewRandom(42))
}

func TestStockRepository_GetTopStocks(t *testing.T) {
	stocks, err := newTestStockRepository().GetTopStocks(context.Background())
	require.NoError(t, err)
	require.Len(t, stocks, len(mockStocks))

	for i, s := range stocks {
		base := mockStocks[i]
		assert.Equal(t, base.Symbol, s.Symbol)
		assert.InDelta(t, base.Price, s.Price, base.Price*0.005)
		assert.InDelta(t, base.Change, s.Change, abs(base.Change)*0.05)
		assert.InDelta(t, base.ChangePercent, s.ChangePercent, abs(base.ChangePercent)*0.05)
	}
}

func TestStockRepository_GetStock(t *testing.T) {
	repo := newTestStockRepository()

	s, err := repo.GetStock(context.Background(), "nvda")
	require.NoError(t, err)
	assert.Equal(t, "NVDA", s.Symbol)
	assert.Equal(t, "NVIDIA Corporation", s.Name)

	_, err = repo.GetStock(context.Background(), "IBM")
	require.ErrorIs(t, err, ErrStockNotFound)
}

func TestStockRepository_GetHistoricalData(t *testing.T) {
	repo := newTestStockRepository()

	candles, err := repo.GetHistoricalData(context.Background(), "AAPL", 30)
	require.NoError(t, err)
	require.Len(t, candles, 31)

	today := time.Now().UTC().Format(time.DateOnly)
	assert.Equal(t, today, candles[len(candles)-1].Date)
	for _, c := range candles {
		assert.LessOrEqual(t, c.Low, c.Open)
		assert.GreaterOrEqual(t, c.High, c.Open)
		assert.LessOrEqual(t, c.Low, c.Close)
		assert.GreaterOrEqual(t, c.High, c.Close)
		assert.GreaterOrEqual(t, c.Volume, int64(1000000))
		assert.Less(t, c.Volume, int64(11000000))
	}

	_, err = repo.GetHistoricalData(context.Background(), "XYZ", 30)
	require.ErrorIs(t, err, ErrStockNotFound)
}

func TestStockRepository_SearchStocks(t *testing.T) {
	repo := newTestStockRepository()

	results, err := repo.SearchStocks(context.Background(), "inc")
	require.NoError(t, err)
	assert.Len(t, results, 6)

	results, err = repo.SearchStocks(context.Background(), "MSFT")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Microsoft Corporation", results[0].Name)
}

func TestStockRepository_LatencyHonoursContext(t *testing.T) {
	repo := NewStockRepository(&config.Config{Stocks: config.Stocks{SimulatedLatency: time.Hour}}, logger.NewNop(), utils.NewRandom(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetTopStocks(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
