package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market-dashboard/internal/dashboard/config"
	"market-dashboard/internal/dashboard/repository"
	"market-dashboard/internal/entity"
	"market-dashboard/pkg/logger"
	"market-dashboard/pkg/utils"
)

const detailChartDays = 30

// SentimentSlots holds the latest social sentiment per asset kind.
type SentimentSlots struct {
	Crypto *entity.SocialSentiment `json:"crypto"`
	Stocks *entity.SocialSentiment `json:"stocks"`
}

// Snapshot is an immutable view of the store. Slices in a snapshot are never
// mutated after it is published.
type Snapshot struct {
	Coins        []entity.Coin `json:"coins"`
	LoadingCoins bool          `json:"loadingCoins"`

	GlobalData        *entity.GlobalData `json:"globalData"`
	LoadingGlobalData bool               `json:"loadingGlobalData"`

	SelectedCoin            *entity.CoinDetail  `json:"selectedCoin"`
	SelectedCoinChartData   []entity.PricePoint `json:"selectedCoinChartData"`
	LoadingSelectedCoinData bool                `json:"loadingSelectedCoinData"`

	Stocks        []entity.Stock `json:"stocks"`
	LoadingStocks bool           `json:"loadingStocks"`

	SelectedStock            *entity.Stock   `json:"selectedStock"`
	SelectedStockChartData   []entity.Candle `json:"selectedStockChartData"`
	LoadingSelectedStockData bool            `json:"loadingSelectedStockData"`

	SocialSentiment        SentimentSlots `json:"socialSentiment"`
	LoadingSocialSentiment bool           `json:"loadingSocialSentiment"`

	AIPredictions        entity.Predictions `json:"aiPredictions"`
	LoadingAIPredictions bool               `json:"loadingAiPredictions"`

	Watchlist []entity.WatchlistEntry `json:"watchlist"`
}

// MarketStore is the application state: the latest value per data category with a
// parallel in-flight flag. Every fetch sets its flag, awaits the repository,
// replaces the slot and clears the flag. Concurrent fetches of the same slot are
// neither cancelled nor de-duplicated; the last one to finish wins.
type MarketStore interface {
	Snapshot() Snapshot
	Subscribe(fn func(Snapshot)) (unsubscribe func())

	FetchTopCoins(ctx context.Context, limit int) ([]entity.Coin, error)
	FetchGlobalData(ctx context.Context) (*entity.GlobalData, error)
	FetchCoinDetails(ctx context.Context, id string) (*entity.CoinDetail, error)
	FetchTopStocks(ctx context.Context) ([]entity.Stock, error)
	FetchStockDetails(ctx context.Context, symbol string) (*entity.Stock, error)
	FetchSocialSentiment(ctx context.Context, asset string, kind entity.AssetKind) (*entity.SocialSentiment, error)
	GenerateAIPredictions(ctx context.Context, asset string) entity.Predictions

	AddToWatchlist(quote entity.Quote) bool
	RemoveFromWatchlist(id string) bool
	SetWatchlistAlert(id string, enabled bool) (entity.WatchlistEntry, error)

	// Wait blocks until background work started by the detail fetches finishes.
	Wait()
}

type marketStore struct {
	cfg         *config.Config
	log         *logger.Logger
	marketRepo  repository.MarketDataRepository
	stockRepo   repository.StockRepository
	socialRepo  repository.SocialMediaRepository
	predictions PredictionService
	now         func() time.Time

	mu          sync.RWMutex
	state       Snapshot
	subscribers map[int]func(Snapshot)
	nextSubID   int

	background sync.WaitGroup
}

// NewMarketStore creates a new, empty MarketStore.
func NewMarketStore(cfg *config.Config, log *logger.Logger, marketRepo repository.MarketDataRepository, stockRepo repository.StockRepository, socialRepo repository.SocialMediaRepository, predictions PredictionService) MarketStore {
	return &marketStore{
		cfg:         cfg,
		log:         log,
		marketRepo:  marketRepo,
		stockRepo:   stockRepo,
		socialRepo:  socialRepo,
		predictions: predictions,
		now:         utils.TimeNowUTC,
		state: Snapshot{
			Coins:     []entity.Coin{},
			Stocks:    []entity.Stock{},
			Watchlist: []entity.WatchlistEntry{},
		},
		subscribers: make(map[int]func(Snapshot)),
	}
}

func (s *marketStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *marketStore) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// update applies fn to the state under the write lock and publishes the result.
func (s *marketStore) update(fn func(st *Snapshot)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}

// goBackground runs fn detached from the caller's cancellation.
func (s *marketStore) goBackground(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		fn(ctx)
	}()
}

func (s *marketStore) Wait() {
	s.background.Wait()
}

func (s *marketStore) FetchTopCoins(ctx context.Context, limit int) ([]entity.Coin, error) {
	if limit <= 0 {
		limit = s.cfg.CoinGecko.TopCoinsLimit
	}

	s.update(func(st *Snapshot) { st.LoadingCoins = true })

	coins, err := s.marketRepo.GetTopCoins(ctx, limit)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch top coins", logger.ErrorField(err))
		s.update(func(st *Snapshot) { st.LoadingCoins = false })
		return nil, fmt.Errorf("failed to fetch top coins: %w", err)
	}

	s.update(func(st *Snapshot) {
		st.Coins = coins
		st.LoadingCoins = false
	})
	return coins, nil
}

func (s *marketStore) FetchGlobalData(ctx context.Context) (*entity.GlobalData, error) {
	s.update(func(st *Snapshot) { st.LoadingGlobalData = true })

	data, err := s.marketRepo.GetGlobalData(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch global data", logger.ErrorField(err))
		s.update(func(st *Snapshot) { st.LoadingGlobalData = false })
		return nil, fmt.Errorf("failed to fetch global data: %w", err)
	}

	s.update(func(st *Snapshot) {
		st.GlobalData = data
		st.LoadingGlobalData = false
	})
	return data, nil
}

// FetchCoinDetails loads the coin and its 30 day chart, then refreshes sentiment
// and predictions for the coin in the background.
func (s *marketStore) FetchCoinDetails(ctx context.Context, id string) (*entity.CoinDetail, error) {
	s.update(func(st *Snapshot) { st.LoadingSelectedCoinData = true })

	coin, err := s.marketRepo.GetCoin(ctx, id)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch coin details", logger.StringField("coin_id", id), logger.ErrorField(err))
		s.update(func(st *Snapshot) { st.LoadingSelectedCoinData = false })
		return nil, fmt.Errorf("failed to fetch details for coin %s: %w", id, err)
	}

	chart, err := s.marketRepo.GetCoinMarketChart(ctx, id, detailChartDays)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch coin chart", logger.StringField("coin_id", id), logger.ErrorField(err))
		s.update(func(st *Snapshot) { st.LoadingSelectedCoinData = false })
		return nil, fmt.Errorf("failed to fetch chart for coin %s: %w", id, err)
	}

	s.update(func(st *Snapshot) {
		st.SelectedCoin = coin
		st.SelectedCoinChartData = chart.PriceSeries()
		st.LoadingSelectedCoinData = false
	})

	s.chainDerivedViews(ctx, coin.Name, entity.AssetKindCrypto)
	return coin, nil
}

func (s *marketStore) FetchTopStocks(ctx context.Context) ([]entity.Stock, error) {
	s.update(func(st *Snapshot) { st.LoadingStocks = true })

	stocks, err := s.stockRepo.GetTopStocks(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch top stocks", logger.ErrorField(err))
		s.update(func(st *Snapshot) { st.LoadingStocks = false })
		return nil, fmt.Errorf("failed to fetch top stocks: %w", err)
	}

	s.update(func(st *Snapshot) {
		st.Stocks = stocks
		st.LoadingStocks = false
	})
	return stocks, nil
}

// FetchStockDetails loads the stock and its 30 day history, then refreshes
// sentiment and predictions for the stock in the background.
func (s *marketStore) FetchStockDetails(ctx context.Context, symbol string) (*entity.Stock, error) {
	s.update(func(st *Snapshot) { st.LoadingSelectedStockData = true })

	stock, err := s.stockRepo.GetStock(ctx, symbol)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to fetch stock details", logger.StringField("symbol", symbol), logger.ErrorField(err))
		s.update(func(st *Snapshot) { st.LoadingSelectedStockData = false })
		return nil, fmt.Errorf("failed to fetch details for stock %s: %w", symbol, err)
	}

	history, err := s.stockRepo.GetHistoricalData(ctx, symbol, detailChartDays)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch stock history", logger.StringField("symbol", symbol), logger.ErrorField(err))
		s.update(func(st *Snapshot) { st.LoadingSelectedStockData = false })
		return nil, fmt.Errorf("failed to fetch history for stock %s: %w", symbol, err)
	}

	s.update(func(st *Snapshot) {
		st.SelectedStock = stock
		st.SelectedStockChartData = history
		st.LoadingSelectedStockData = false
	})

	s.chainDerivedViews(ctx, stock.Name, entity.AssetKindStock)
	return stock, nil
}

// chainDerivedViews starts the sentiment and prediction refreshes that follow a
// detail fetch. Their outcome is observable through the store only.
func (s *marketStore) chainDerivedViews(ctx context.Context, assetName string, kind entity.AssetKind) {
	s.goBackground(ctx, func(ctx context.Context) {
		if _, err := s.FetchSocialSentiment(ctx, assetName, kind); err != nil {
			s.log.WarnContext(ctx, "Background sentiment refresh failed", logger.StringField("asset", assetName), logger.ErrorField(err))
		}
	})
	s.goBackground(ctx, func(ctx context.Context) {
		s.GenerateAIPredictions(ctx, assetName)
	})
}

func (s *marketStore) FetchSocialSentiment(ctx context.Context, asset string, kind entity.AssetKind) (*entity.SocialSentiment, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAssetKind, kind)
	}

	s.update(func(st *Snapshot) { st.LoadingSocialSentiment = true })

	data, err := s.socialRepo.GetSocialSentiment(ctx, asset)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch social sentiment", logger.StringField("asset", asset), logger.ErrorField(err))
		s.update(func(st *Snapshot) { st.LoadingSocialSentiment = false })
		return nil, fmt.Errorf("failed to fetch social sentiment for %s: %w", asset, err)
	}

	s.update(func(st *Snapshot) {
		if kind == entity.AssetKindCrypto {
			st.SocialSentiment.Crypto = data
		} else {
			st.SocialSentiment.Stocks = data
		}
		st.LoadingSocialSentiment = false
	})
	return data, nil
}

func (s *marketStore) GenerateAIPredictions(ctx context.Context, asset string) entity.Predictions {
	s.update(func(st *Snapshot) { st.LoadingAIPredictions = true })

	p := s.predictions.Generate(asset)
	s.log.DebugContext(ctx, "Generated predictions",
		logger.StringField("asset", asset),
		logger.StringField("direction", string(p.Forecast.Direction)))

	s.update(func(st *Snapshot) {
		st.AIPredictions = p
		st.LoadingAIPredictions = false
	})
	return p
}

func watchlistIndex(list []entity.WatchlistEntry, id string) int {
	for i, e := range list {
		if e.ID() == id {
			return i
		}
	}
	return -1
}

// AddToWatchlist appends quote unless an entry with the same id exists. It
// reports whether the list changed.
func (s *marketStore) AddToWatchlist(quote entity.Quote) bool {
	added := false
	s.update(func(st *Snapshot) {
		if watchlistIndex(st.Watchlist, quote.ID) >= 0 {
			return
		}
		next := make([]entity.WatchlistEntry, len(st.Watchlist), len(st.Watchlist)+1)
		copy(next, st.Watchlist)
		st.Watchlist = append(next, entity.WatchlistEntry{Quote: quote, AddedAt: s.now()})
		added = true
	})
	return added
}

// RemoveFromWatchlist drops the entry with id. Removing an absent id is a no-op.
func (s *marketStore) RemoveFromWatchlist(id string) bool {
	removed := false
	s.update(func(st *Snapshot) {
		idx := watchlistIndex(st.Watchlist, id)
		if idx < 0 {
			return
		}
		next := make([]entity.WatchlistEntry, 0, len(st.Watchlist)-1)
		next = append(next, st.Watchlist[:idx]...)
		st.Watchlist = append(next, st.Watchlist[idx+1:]...)
		removed = true
	})
	return removed
}

func (s *marketStore) SetWatchlistAlert(id string, enabled bool) (entity.WatchlistEntry, error) {
	var (
		entry entity.WatchlistEntry
		found bool
	)
	s.update(func(st *Snapshot) {
		idx := watchlistIndex(st.Watchlist, id)
		if idx < 0 {
			return
		}
		next := make([]entity.WatchlistEntry, len(st.Watchlist))
		copy(next, st.Watchlist)
		next[idx].AlertEnabled = enabled
		st.Watchlist = next
		entry, found = next[idx], true
	})
	if !found {
		return entity.WatchlistEntry{}, fmt.Errorf("%w: %s", ErrNotInWatchlist, id)
	}
	return entry, nil
}
