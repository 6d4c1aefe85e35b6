package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"

	"market-dashboard/internal/dashboard/config"
	"market-dashboard/internal/entity"
	"market-dashboard/pkg/common"
	"market-dashboard/pkg/logger"
	"market-dashboard/pkg/telegram"
	"market-dashboard/pkg/utils"
)

const (
	defaultAlertThresholdPercent = 5.0
	defaultAlertDedupeWindow     = time.Hour
)

// AlertService refreshes market data on a schedule and notifies about large moves
// of watchlist entries with alerts enabled.
type AlertService interface {
	// Start runs the refresh schedule until ctx is done.
	Start(ctx context.Context)
	// Refresh reloads coins, global data and stocks, then checks alerts.
	Refresh(ctx context.Context)
	// CheckAlerts notifies about every qualifying entry not alerted within the
	// dedupe window and returns the quotes it notified about.
	CheckAlerts(ctx context.Context) []entity.Quote
}

type alertService struct {
	cfg      *config.Config
	log      *logger.Logger
	store    MarketStore
	notifier telegram.Notifier
	schedule string
	parser   cron.Parser
	sent     *cache.Cache
	now      func() time.Time
}

// NewAlertService creates a new AlertService. A nil notifier only logs alerts.
func NewAlertService(cfg *config.Config, log *logger.Logger, store MarketStore, notifier telegram.Notifier) (AlertService, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(cfg.Refresh.Cron); err != nil {
		return nil, fmt.Errorf("invalid refresh cron %q: %w", cfg.Refresh.Cron, err)
	}

	window := cfg.Refresh.AlertDedupeWindow
	if window <= 0 {
		window = defaultAlertDedupeWindow
	}

	return &alertService{
		cfg:      cfg,
		log:      log,
		store:    store,
		notifier: notifier,
		schedule: cfg.Refresh.Cron,
		parser:   parser,
		sent:     cache.New(window, 2*window),
		now:      utils.TimeNowUTC,
	}, nil
}

func (s *alertService) Start(ctx context.Context) {
	c := cron.New(
		cron.WithParser(s.parser),
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(s.schedule, func() { s.Refresh(ctx) }); err != nil {
		s.log.Error("Failed to schedule refresh", logger.ErrorField(err), logger.StringField("cron", s.schedule))
		return
	}

	s.log.Info("Refresh scheduler started", logger.StringField("cron", s.schedule))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("Refresh scheduler stopping")
}

func (s *alertService) Refresh(ctx context.Context) {
	start := time.Now()

	if _, err := s.store.FetchTopCoins(ctx, s.cfg.CoinGecko.TopCoinsLimit); err != nil {
		s.reportFailure(ctx, "refresh_coins", err)
	}
	if _, err := s.store.FetchGlobalData(ctx); err != nil {
		s.reportFailure(ctx, "refresh_global", err)
	}
	if _, err := s.store.FetchTopStocks(ctx); err != nil {
		s.reportFailure(ctx, "refresh_stocks", err)
	}

	alerts := s.CheckAlerts(ctx)
	s.log.InfoContext(ctx, "Market data refreshed",
		logger.IntField("alerts", len(alerts)),
		logger.Field("duration", time.Since(start)))
}

func (s *alertService) reportFailure(ctx context.Context, step string, err error) {
	s.log.ErrorContext(ctx, "Refresh step failed", logger.StringField("step", step), logger.ErrorField(err))
	if s.notifier == nil {
		return
	}
	if errSend := s.notifier.SendMessage(telegram.FormatErrorAlertMessage(s.now(), step, err.Error())); errSend != nil {
		s.log.ErrorContext(ctx, "Failed to send error alert", logger.ErrorField(errSend))
	}
}

func (s *alertService) threshold() float64 {
	if s.cfg.Refresh.AlertThresholdPercent > 0 {
		return s.cfg.Refresh.AlertThresholdPercent
	}
	return defaultAlertThresholdPercent
}

// latestQuotes indexes the freshest quote of every listed asset by id.
func latestQuotes(snap Snapshot) map[string]entity.Quote {
	out := make(map[string]entity.Quote, len(snap.Coins)+len(snap.Stocks))
	for _, c := range snap.Coins {
		out[c.ID] = c.Quote()
	}
	for _, st := range snap.Stocks {
		out[st.Symbol] = st.Quote()
	}
	return out
}

func (s *alertService) CheckAlerts(ctx context.Context) []entity.Quote {
	snap := s.store.Snapshot()
	latest := latestQuotes(snap)
	threshold := s.threshold()

	var alerted []entity.Quote
	for _, entry := range snap.Watchlist {
		if !entry.AlertEnabled {
			continue
		}
		quote, ok := latest[entry.ID()]
		if !ok {
			quote = entry.Quote
		}
		if math.Abs(quote.ChangePercent) < threshold {
			continue
		}

		alertType := telegram.AlertTypeForChange(quote.ChangePercent)
		key := fmt.Sprintf(common.WatchlistAlertKeyFormat, alertType, quote.ID)
		if _, found := s.sent.Get(key); found {
			s.log.DebugContext(ctx, "Skip resend alert", logger.StringField("id", quote.ID), logger.StringField("alert_type", string(alertType)))
			continue
		}

		if s.notifier == nil {
			s.log.InfoContext(ctx, "Watchlist alert",
				logger.StringField("id", quote.ID),
				logger.StringField("alert_type", string(alertType)),
				logger.FloatField("change_percent", quote.ChangePercent))
		} else if err := s.notifier.SendMessage(telegram.FormatWatchlistAlert(alertType, quote, threshold, s.now())); err != nil {
			s.log.ErrorContext(ctx, "Failed to send alert", logger.ErrorField(err), logger.StringField("id", quote.ID))
			continue
		}

		s.sent.SetDefault(key, quote.ChangePercent)
		alerted = append(alerted, quote)
	}
	return alerted
}
