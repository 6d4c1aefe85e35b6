package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-dashboard/internal/dashboard/config"
	"market-dashboard/internal/dashboard/repository"
	"market-dashboard/internal/entity"
	"market-dashboard/pkg/logger"
)

var testCoins = []entity.Coin{
	{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 63000, PriceChangePercentage24h: 2},
	{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: 3400, PriceChangePercentage24h: -7},
}

var testStocks = []entity.Stock{
	{Symbol: "AAPL", Name: "Apple Inc.", Price: 178.72, ChangePercent: 1.33},
	{Symbol: "TSLA", Name: "Tesla, Inc.", Price: 175.35, ChangePercent: -6.1},
}

type storeFixture struct {
	store  MarketStore
	market *fakeMarketRepo
	social *fakeSocialRepo
}

func newStoreFixture() storeFixture {
	market := &fakeMarketRepo{coins: testCoins, global: &entity.GlobalData{ActiveCryptocurrencies: 42}}
	social := &fakeSocialRepo{}
	cfg := &config.Config{CoinGecko: config.CoinGecko{TopCoinsLimit: 20}}
	store := NewMarketStore(cfg, logger.NewNop(), market, &fakeStockRepo{stocks: testStocks}, social, fakePredictions{})
	return storeFixture{store: store, market: market, social: social}
}

func TestMarketStore_FetchTopCoins(t *testing.T) {
	f := newStoreFixture()

	coins, err := f.store.FetchTopCoins(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, coins, 1)

	snap := f.store.Snapshot()
	assert.Equal(t, coins, snap.Coins)
	assert.False(t, snap.LoadingCoins)
}

func TestMarketStore_LoadingFlagWhileInFlight(t *testing.T) {
	f := newStoreFixture()
	f.market.gate = make(chan []entity.Coin)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.store.FetchTopCoins(context.Background(), 5)
	}()

	require.Eventually(t, func() bool { return f.store.Snapshot().LoadingCoins }, time.Second, time.Millisecond)
	f.market.gate <- testCoins
	<-done
	assert.False(t, f.store.Snapshot().LoadingCoins)
	assert.Len(t, f.store.Snapshot().Coins, 2)
}

func TestMarketStore_LastWriteWins(t *testing.T) {
	f := newStoreFixture()
	f.market.gate = make(chan []entity.Coin)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.store.FetchTopCoins(context.Background(), 5)
		}()
	}
	require.Eventually(t, func() bool { return f.market.topCalls.Load() == 2 }, time.Second, time.Millisecond)

	// Both requests were issued; the response delivered last replaces the slot.
	f.market.gate <- testCoins[:1]
	require.Eventually(t, func() bool { return len(f.store.Snapshot().Coins) == 1 }, time.Second, time.Millisecond)
	f.market.gate <- testCoins
	wg.Wait()

	assert.Equal(t, testCoins, f.store.Snapshot().Coins)
	assert.EqualValues(t, 2, f.market.topCalls.Load())
}

func TestMarketStore_FetchGlobalData(t *testing.T) {
	f := newStoreFixture()
	data, err := f.store.FetchGlobalData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, data.ActiveCryptocurrencies)
	assert.Same(t, data, f.store.Snapshot().GlobalData)
}

func TestMarketStore_FetchCoinDetailsChainsDerivedViews(t *testing.T) {
	f := newStoreFixture()

	coin, err := f.store.FetchCoinDetails(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin", coin.Name)

	f.store.Wait()
	snap := f.store.Snapshot()
	assert.Equal(t, "bitcoin", snap.SelectedCoin.ID)
	assert.Len(t, snap.SelectedCoinChartData, detailChartDays)
	require.NotNil(t, snap.SocialSentiment.Crypto)
	assert.Equal(t, "Bitcoin", snap.SocialSentiment.Crypto.Asset)
	assert.Nil(t, snap.SocialSentiment.Stocks)
	require.NotNil(t, snap.AIPredictions.Forecast)
	assert.Equal(t, "Bitcoin", snap.AIPredictions.Forecast.Asset)
	assert.False(t, snap.LoadingSelectedCoinData)
	assert.False(t, snap.LoadingSocialSentiment)
	assert.False(t, snap.LoadingAIPredictions)
}

func TestMarketStore_ChainedWorkSurvivesCallerCancellation(t *testing.T) {
	f := newStoreFixture()
	ctx, cancel := context.WithCancel(context.Background())

	_, err := f.store.FetchCoinDetails(ctx, "ethereum")
	require.NoError(t, err)
	cancel()

	f.store.Wait()
	require.NotNil(t, f.store.Snapshot().SocialSentiment.Crypto)
	assert.Equal(t, "Ethereum", f.store.Snapshot().SocialSentiment.Crypto.Asset)
}

func TestMarketStore_FetchCoinDetailsUnknown(t *testing.T) {
	f := newStoreFixture()

	_, err := f.store.FetchCoinDetails(context.Background(), "dogecoin")
	require.ErrorIs(t, err, repository.ErrCoinNotFound)
	f.store.Wait()

	snap := f.store.Snapshot()
	assert.Nil(t, snap.SelectedCoin)
	assert.False(t, snap.LoadingSelectedCoinData)
	assert.Empty(t, f.social.assets)
}

func TestMarketStore_FetchStockDetails(t *testing.T) {
	f := newStoreFixture()

	stock, err := f.store.FetchStockDetails(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, "Tesla, Inc.", stock.Name)

	f.store.Wait()
	snap := f.store.Snapshot()
	assert.Len(t, snap.SelectedStockChartData, detailChartDays+1)
	require.NotNil(t, snap.SocialSentiment.Stocks)
	assert.Equal(t, "Tesla, Inc.", snap.SocialSentiment.Stocks.Asset)

	_, err = f.store.FetchStockDetails(context.Background(), "IBM")
	require.ErrorIs(t, err, repository.ErrStockNotFound)
	assert.False(t, f.store.Snapshot().LoadingSelectedStockData)
}

func TestMarketStore_FetchSocialSentimentInvalidKind(t *testing.T) {
	f := newStoreFixture()
	_, err := f.store.FetchSocialSentiment(context.Background(), "Bitcoin", entity.AssetKind("bonds"))
	require.ErrorIs(t, err, ErrInvalidAssetKind)
}

func TestMarketStore_Watchlist(t *testing.T) {
	btc := testCoins[0].Quote()
	aapl := testStocks[0].Quote()

	t.Run("add is idempotent by id", func(t *testing.T) {
		f := newStoreFixture()
		assert.True(t, f.store.AddToWatchlist(btc))
		assert.False(t, f.store.AddToWatchlist(btc))
		assert.True(t, f.store.AddToWatchlist(aapl))
		assert.Len(t, f.store.Snapshot().Watchlist, 2)
	})

	t.Run("removing a missing id is a no-op", func(t *testing.T) {
		f := newStoreFixture()
		f.store.AddToWatchlist(btc)
		assert.False(t, f.store.RemoveFromWatchlist("dogecoin"))
		assert.Len(t, f.store.Snapshot().Watchlist, 1)
		assert.True(t, f.store.RemoveFromWatchlist("bitcoin"))
		assert.Empty(t, f.store.Snapshot().Watchlist)
	})

	t.Run("alert flag", func(t *testing.T) {
		f := newStoreFixture()
		f.store.AddToWatchlist(aapl)
		entry, err := f.store.SetWatchlistAlert("AAPL", true)
		require.NoError(t, err)
		assert.True(t, entry.AlertEnabled)
		assert.True(t, f.store.Snapshot().Watchlist[0].AlertEnabled)

		_, err = f.store.SetWatchlistAlert("MSFT", true)
		require.ErrorIs(t, err, ErrNotInWatchlist)
	})

	t.Run("published snapshots are not mutated", func(t *testing.T) {
		f := newStoreFixture()
		f.store.AddToWatchlist(aapl)
		before := f.store.Snapshot()
		_, err := f.store.SetWatchlistAlert("AAPL", true)
		require.NoError(t, err)
		f.store.RemoveFromWatchlist("AAPL")
		require.Len(t, before.Watchlist, 1)
		assert.False(t, before.Watchlist[0].AlertEnabled)
	})
}

func TestMarketStore_Subscribe(t *testing.T) {
	f := newStoreFixture()

	var (
		mu    sync.Mutex
		snaps []Snapshot
	)
	unsubscribe := f.store.Subscribe(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		snaps = append(snaps, s)
	})

	_, err := f.store.FetchTopStocks(context.Background())
	require.NoError(t, err)

	mu.Lock()
	require.Len(t, snaps, 2)
	assert.True(t, snaps[0].LoadingStocks)
	assert.False(t, snaps[1].LoadingStocks)
	assert.Len(t, snaps[1].Stocks, 2)
	mu.Unlock()

	unsubscribe()
	unsubscribe()
	f.store.AddToWatchlist(testStocks[0].Quote())

	mu.Lock()
	assert.Len(t, snaps, 2)
	mu.Unlock()
}
