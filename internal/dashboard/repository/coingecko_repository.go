package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"market-dashboard/internal/dashboard/config"
	"market-dashboard/internal/entity"
	"market-dashboard/pkg/logger"
	"market-dashboard/pkg/retry"
	"market-dashboard/pkg/utils"
)

type coinGeckoRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	client         *resty.Client
	requestLimiter *rate.Limiter
	fallback       *marketFallback
}

type globalResponse struct {
	Data entity.GlobalData `json:"data"`
}

type searchResponse struct {
	Coins []entity.CoinSearchResult `json:"coins"`
}

// NewCoinGeckoRepository creates a MarketDataRepository backed by the CoinGecko v3 API.
// httpClient may be nil; it is copied before the timeout is applied.
func NewCoinGeckoRepository(cfg *config.Config, log *logger.Logger, httpClient *http.Client, rnd *utils.Random) MarketDataRepository {
	var client *resty.Client
	if httpClient != nil {
		own := *httpClient
		client = resty.NewWithClient(&own)
	} else {
		client = resty.New()
	}
	client.SetBaseURL(strings.TrimRight(cfg.CoinGecko.BaseURL, "/")).
		SetHeader("Accept", "application/json")
	if cfg.CoinGecko.Timeout > 0 {
		client.SetTimeout(cfg.CoinGecko.Timeout)
	}

	limit := rate.Inf
	if cfg.CoinGecko.MaxRequestPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.CoinGecko.MaxRequestPerMinute))
	}

	if rnd == nil {
		rnd = utils.NewTimeSeededRandom()
	}

	return &coinGeckoRepository{
		cfg:            cfg,
		log:            log,
		client:         client,
		requestLimiter: rate.NewLimiter(limit, 1),
		fallback:       &marketFallback{rnd: rnd, now: time.Now},
	}
}

func (r *coinGeckoRepository) quotePolicy() retry.Policy {
	return retry.Policy{MaxRetries: r.cfg.CoinGecko.QuoteMaxRetries}
}

func (r *coinGeckoRepository) globalPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries: r.cfg.CoinGecko.GlobalMaxRetries,
		BaseDelay:  r.cfg.CoinGecko.GlobalRetryDelay,
		Backoff:    retry.Backoff(r.cfg.CoinGecko.GlobalBackoff),
	}
}

func (r *coinGeckoRepository) GetTopCoins(ctx context.Context, limit int) ([]entity.Coin, error) {
	if limit <= 0 {
		limit = r.cfg.CoinGecko.TopCoinsLimit
	}

	var coins []entity.Coin
	err := r.get(ctx, r.quotePolicy(), 0, "/coins/markets", map[string]string{
		"vs_currency":             "usd",
		"order":                   "market_cap_desc",
		"per_page":                strconv.Itoa(limit),
		"page":                    "1",
		"sparkline":               "true",
		"price_change_percentage": "24h,7d,30d",
	}, &coins)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to fetch top coins, serving fallback",
			logger.IntField("limit", limit), logger.ErrorField(err))
		return r.fallback.topCoins(limit), nil
	}

	for i := range coins {
		coins[i].Image = r.allowedImage(coins[i].Image)
	}
	return coins, nil
}

func (r *coinGeckoRepository) GetCoin(ctx context.Context, id string) (*entity.CoinDetail, error) {
	var detail entity.CoinDetail
	err := r.get(ctx, r.quotePolicy(), 0, "/coins/"+url.PathEscape(id), map[string]string{
		"localization":   "false",
		"tickers":        "false",
		"market_data":    "true",
		"community_data": "false",
		"developer_data": "false",
		"sparkline":      "false",
	}, &detail)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to fetch coin, serving fallback",
			logger.StringField("coin_id", id), logger.ErrorField(err))
		fb, ok := r.fallback.coinDetail(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrCoinNotFound, id)
		}
		return fb, nil
	}

	detail.Image.Thumb = r.allowedImage(detail.Image.Thumb)
	detail.Image.Small = r.allowedImage(detail.Image.Small)
	detail.Image.Large = r.allowedImage(detail.Image.Large)
	return &detail, nil
}

func (r *coinGeckoRepository) GetCoinMarketChart(ctx context.Context, id string, days int) (*entity.MarketChart, error) {
	if days <= 0 {
		days = 1
	}

	var chart entity.MarketChart
	err := r.get(ctx, r.quotePolicy(), 0, "/coins/"+url.PathEscape(id)+"/market_chart", map[string]string{
		"vs_currency": "usd",
		"days":        strconv.Itoa(days),
	}, &chart)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to fetch market chart, serving fallback",
			logger.StringField("coin_id", id), logger.IntField("days", days), logger.ErrorField(err))
		return r.fallback.marketChart(id, days), nil
	}
	return &chart, nil
}

func (r *coinGeckoRepository) GetGlobalData(ctx context.Context) (*entity.GlobalData, error) {
	params := map[string]string{
		"_t": strconv.FormatInt(time.Now().UnixMilli(), 10),
	}

	var resp globalResponse
	err := r.get(ctx, r.globalPolicy(), r.cfg.CoinGecko.GlobalTimeout, "/global", params, &resp)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to fetch global data after retries, serving fallback",
			logger.IntField("max_retries", r.cfg.CoinGecko.GlobalMaxRetries), logger.ErrorField(err))
		return r.fallback.globalData(), nil
	}
	return &resp.Data, nil
}

func (r *coinGeckoRepository) SearchCoins(ctx context.Context, query string) ([]entity.CoinSearchResult, error) {
	var resp searchResponse
	err := r.get(ctx, r.quotePolicy(), 0, "/search", map[string]string{"query": query}, &resp)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to search coins, serving fallback",
			logger.StringField("query", query), logger.ErrorField(err))
		return r.fallback.search(query), nil
	}

	for i := range resp.Coins {
		resp.Coins[i].Thumb = r.allowedImage(resp.Coins[i].Thumb)
		resp.Coins[i].Large = r.allowedImage(resp.Coins[i].Large)
	}
	return resp.Coins, nil
}

// get performs a throttled GET under policy. A positive timeout bounds each attempt.
func (r *coinGeckoRepository) get(ctx context.Context, policy retry.Policy, timeout time.Duration, path string, params map[string]string, out interface{}) error {
	return retry.Do(ctx, policy, func(ctx context.Context) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if err := r.requestLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("failed to wait for request limit: %w", err)
		}

		resp, err := r.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetResult(out).
			Get(path)
		if err != nil {
			return fmt.Errorf("failed to send request to %s: %w", path, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: %s returned %d", ErrUpstreamStatus, path, resp.StatusCode())
		}
		return nil
	}, func(attempt int, err error) {
		r.log.WarnContext(ctx, "Retrying market data request",
			logger.StringField("path", path),
			logger.IntField("attempt", attempt),
			logger.Field("delay", policy.Normalize().Delay(attempt).String()),
			logger.ErrorField(err))
	})
}

// allowedImage returns raw when its host is on the image allowlist and "" otherwise.
func (r *coinGeckoRepository) allowedImage(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" {
		return ""
	}
	for _, domain := range r.cfg.CoinGecko.ImageDomains {
		if domain == "*" || strings.EqualFold(u.Hostname(), domain) {
			return raw
		}
	}
	return ""
}
