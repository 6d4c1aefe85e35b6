package config

import (
	"time"

	"market-dashboard/pkg/common"
	"market-dashboard/pkg/config"
)

// CoinGecko holds the configuration for the public market-data API.
type CoinGecko struct {
	BaseURL             string        `mapstructure:"base_url"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	Timeout             time.Duration `mapstructure:"timeout"`
	TopCoinsLimit       int           `mapstructure:"top_coins_limit"`
	ImageDomains        []string      `mapstructure:"image_domains"`

	// Global aggregate retry policy.
	GlobalTimeout    time.Duration `mapstructure:"global_timeout"`
	GlobalMaxRetries int           `mapstructure:"global_max_retries"`
	GlobalRetryDelay time.Duration `mapstructure:"global_retry_delay"`
	GlobalBackoff    string        `mapstructure:"global_backoff"`

	// Quote path retry policy. Zero keeps the single-attempt behaviour.
	QuoteMaxRetries int `mapstructure:"quote_max_retries"`
}

// Gemini holds the configuration for the chat assistant bridge.
type Gemini struct {
	BaseURL                 string  `mapstructure:"base_url"`
	Model                   string  `mapstructure:"model"`
	MaxOutputTokens         int     `mapstructure:"max_output_tokens"`
	FallbackModel           string  `mapstructure:"fallback_model"`
	FallbackMaxOutputTokens int     `mapstructure:"fallback_max_output_tokens"`
	Temperature             float64 `mapstructure:"temperature"`
	HistoryWindow           int     `mapstructure:"history_window"`
	CredentialKey           string  `mapstructure:"credential_key"`
}

// Stocks holds the configuration for the synthesized equity feed.
type Stocks struct {
	SimulatedLatency time.Duration `mapstructure:"simulated_latency"`
}

// Refresh holds the configuration for the periodic refresh and watchlist alerts.
type Refresh struct {
	Enabled               bool          `mapstructure:"enabled"`
	Cron                  string        `mapstructure:"cron"`
	AlertThresholdPercent float64       `mapstructure:"alert_threshold_percent"`
	AlertDedupeWindow     time.Duration `mapstructure:"alert_dedupe_window"`
}

// Telegram holds configuration for the Telegram notifier. An empty token disables it.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the dashboard service.
type Config struct {
	App       config.App    `mapstructure:"app"`
	Logger    config.Logger `mapstructure:"logger"`
	Redis     config.Redis  `mapstructure:"redis"`
	API       config.API    `mapstructure:"api"`
	CoinGecko CoinGecko     `mapstructure:"coingecko"`
	Gemini    Gemini        `mapstructure:"gemini"`
	Stocks    Stocks        `mapstructure:"stocks"`
	Refresh   Refresh       `mapstructure:"refresh"`
	Telegram  Telegram      `mapstructure:"telegram"`
}

// Defaults returns the configuration used when a key is absent from file and env.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":    "market-dashboard",
		"app.env":     "development",
		"app.version": "0.1.0",

		"logger.level":    "info",
		"logger.encoding": "json",

		"api.port": 3000,

		"coingecko.base_url":               "https://api.coingecko.com/api/v3",
		"coingecko.max_request_per_minute": 30,
		"coingecko.timeout":                "0s",
		"coingecko.top_coins_limit":        20,
		"coingecko.image_domains":          []string{"static.coingecko.com", "assets.coingecko.com"},
		"coingecko.global_timeout":         "10s",
		"coingecko.global_max_retries":     3,
		"coingecko.global_retry_delay":     "1s",
		"coingecko.global_backoff":         "linear",
		"coingecko.quote_max_retries":      0,

		"gemini.model":                      "gemini-1.5-pro",
		"gemini.max_output_tokens":          800,
		"gemini.fallback_model":             "gemini-1.0-pro",
		"gemini.fallback_max_output_tokens": 500,
		"gemini.temperature":                0.7,
		"gemini.history_window":             10,
		"gemini.credential_key":             common.CredentialKeyDefault,

		"refresh.enabled":                 false,
		"refresh.cron":                    "*/5 * * * *",
		"refresh.alert_threshold_percent": 5.0,
		"refresh.alert_dedupe_window":     "1h",
	}
}

// Load loads the dashboard configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
