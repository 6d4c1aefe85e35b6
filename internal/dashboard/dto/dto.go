package dto

import (
	"time"

	"market-dashboard/internal/entity"
)

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of the health probe.
type HealthResponse struct {
	Status      string    `json:"status"`
	Time        time.Time `json:"time"`
	Environment string    `json:"environment"`
	Version     string    `json:"version"`
}

// ChartResponse is a coin chart converted to an ordered series.
type ChartResponse struct {
	ID     string              `json:"id"`
	Days   int                 `json:"days"`
	Prices []entity.PricePoint `json:"prices"`
}

// PredictionRequest asks for a fresh forecast and risk assessment.
type PredictionRequest struct {
	Asset string `json:"asset"`
}

// ValuationRequest asks for a long-horizon projection.
type ValuationRequest struct {
	AssetID    string `json:"assetId"`
	TargetYear int    `json:"targetYear"`
}

// AddWatchlistRequest adds a quote to the watchlist.
type AddWatchlistRequest struct {
	Quote entity.Quote `json:"quote"`
}

// AddWatchlistResponse reports whether the quote was newly added.
type AddWatchlistResponse struct {
	Added     bool                    `json:"added"`
	Watchlist []entity.WatchlistEntry `json:"watchlist"`
}

// SetAlertRequest toggles alerts of a watchlist entry.
type SetAlertRequest struct {
	Enabled bool `json:"enabled"`
}

// CredentialRequest stores the assistant API key.
type CredentialRequest struct {
	APIKey string `json:"apiKey"`
}

// CredentialStatusResponse reports whether an API key is stored. The key itself is
// never returned.
type CredentialStatusResponse struct {
	Set bool `json:"set"`
}

// ChatRequest is a user utterance.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	Reply entity.ChatMessage `json:"reply"`
}
