package entity

import "time"

// WatchlistEntry references an asset quote on the user's watchlist.
type WatchlistEntry struct {
	Quote        Quote     `json:"quote"`
	AlertEnabled bool      `json:"alertEnabled"`
	AddedAt      time.Time `json:"addedAt"`
}

// ID returns the identifier the watchlist deduplicates on.
func (w WatchlistEntry) ID() string {
	return w.Quote.ID
}
