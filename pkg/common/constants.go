package common

const (
	CredentialKeyDefault = "gemini-api-key"

	WatchlistAlertKeyFormat = "watchlist_alert:%s:%s"
)
