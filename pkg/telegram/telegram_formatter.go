package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"market-dashboard/internal/entity"
)

// AlertType represents the type of alert
type AlertType string

const (
	PriceSurge AlertType = "PRICE_SURGE"
	PriceDrop  AlertType = "PRICE_DROP"
)

// AlertTypeForChange returns the alert type matching the sign of a change.
func AlertTypeForChange(changePercent float64) AlertType {
	if changePercent < 0 {
		return PriceDrop
	}
	return PriceSurge
}

const prettyDateLayout = "02 Jan 2006 15:04 MST"

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// FormatWatchlistAlert formats a watchlist price movement into a Markdown string for Telegram.
func FormatWatchlistAlert(alertType AlertType, quote entity.Quote, threshold float64, at time.Time) string {
	var builder strings.Builder

	var title, emoji string
	switch alertType {
	case PriceSurge:
		title = "Price Surge"
		emoji = "🚀"
	case PriceDrop:
		title = "Price Drop"
		emoji = "⚠️"
	default:
		title = "Price Alert"
		emoji = "🔔"
	}

	ticker := strings.ToUpper(quote.Ticker)
	if ticker == "" {
		ticker = strings.ToUpper(quote.ID)
	}

	builder.WriteString(fmt.Sprintf("%s *[%s] %s*\n", emoji, escape(ticker), title))
	builder.WriteString(fmt.Sprintf("%s (%s)\n", escape(quote.Name), quote.Kind))
	builder.WriteString(fmt.Sprintf("💰 Price: %s\n", formatPrice(quote.Price)))
	builder.WriteString(fmt.Sprintf("📊 24h change: %+.2f%% (threshold %.2f%%)\n", quote.ChangePercent, threshold))
	builder.WriteString(at.Format(prettyDateLayout))
	return builder.String()
}

// FormatErrorAlertMessage formats a failed refresh step.
func FormatErrorAlertMessage(at time.Time, errType string, errMsg string) string {
	return fmt.Sprintf("📛 [ERROR ALERT]\n%s\n🔧 %s\n⚠️ %s\n", at.Format(prettyDateLayout), escape(errType), escape(errMsg))
}

func formatPrice(price float64) string {
	switch {
	case price >= 1:
		return fmt.Sprintf("$%.2f", price)
	case price >= 0.01:
		return fmt.Sprintf("$%.4f", price)
	default:
		return fmt.Sprintf("$%.8f", price)
	}
}
