package entity

// AssetKind distinguishes crypto assets from equities.
type AssetKind string

const (
	AssetKindCrypto AssetKind = "crypto"
	AssetKindStock  AssetKind = "stocks"
)

// Valid reports whether k is a known asset kind.
func (k AssetKind) Valid() bool {
	return k == AssetKindCrypto || k == AssetKindStock
}

// Quote is a point-in-time price/volume snapshot of a tradable asset. Crypto quotes
// are identified by coin id, equities by ticker symbol.
type Quote struct {
	ID            string    `json:"id"`
	Kind          AssetKind `json:"kind"`
	Name          string    `json:"name"`
	Ticker        string    `json:"ticker"`
	Price         float64   `json:"price"`
	Change24h     float64   `json:"change_24h"`
	ChangePercent float64   `json:"change_percent_24h"`
	MarketCap     float64   `json:"market_cap"`
	Volume        float64   `json:"volume"`
	Image         string    `json:"image,omitempty"`
}
