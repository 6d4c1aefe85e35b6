package entity

import "time"

// Coin is a market snapshot of a cryptocurrency as listed by the markets endpoint.
type Coin struct {
	ID                            string     `json:"id"`
	Symbol                        string     `json:"symbol"`
	Name                          string     `json:"name"`
	Image                         string     `json:"image"`
	CurrentPrice                  float64    `json:"current_price"`
	MarketCap                     float64    `json:"market_cap"`
	MarketCapRank                 int        `json:"market_cap_rank"`
	FullyDilutedValuation         *float64   `json:"fully_diluted_valuation"`
	TotalVolume                   float64    `json:"total_volume"`
	High24h                       float64    `json:"high_24h"`
	Low24h                        float64    `json:"low_24h"`
	PriceChange24h                float64    `json:"price_change_24h"`
	PriceChangePercentage24h      float64    `json:"price_change_percentage_24h"`
	MarketCapChange24h            float64    `json:"market_cap_change_24h"`
	MarketCapChangePercentage24h  float64    `json:"market_cap_change_percentage_24h"`
	CirculatingSupply             float64    `json:"circulating_supply"`
	TotalSupply                   *float64   `json:"total_supply"`
	MaxSupply                     *float64   `json:"max_supply"`
	ATH                           float64    `json:"ath"`
	ATHChangePercentage           float64    `json:"ath_change_percentage"`
	ATHDate                       string     `json:"ath_date"`
	ATL                           float64    `json:"atl"`
	ATLChangePercentage           float64    `json:"atl_change_percentage"`
	ATLDate                       string     `json:"atl_date"`
	LastUpdated                   string     `json:"last_updated"`
	SparklineIn7d                 *Sparkline `json:"sparkline_in_7d,omitempty"`
	PriceChangePercentage7dInCur  *float64   `json:"price_change_percentage_7d_in_currency,omitempty"`
	PriceChangePercentage30dInCur *float64   `json:"price_change_percentage_30d_in_currency,omitempty"`
}

// Sparkline is the 7 day hourly price trace attached to a market listing.
type Sparkline struct {
	Price []float64 `json:"price"`
}

// Quote projects the coin onto the unified quote view.
func (c Coin) Quote() Quote {
	return Quote{
		ID:            c.ID,
		Kind:          AssetKindCrypto,
		Name:          c.Name,
		Ticker:        c.Symbol,
		Price:         c.CurrentPrice,
		Change24h:     c.PriceChange24h,
		ChangePercent: c.PriceChangePercentage24h,
		MarketCap:     c.MarketCap,
		Volume:        c.TotalVolume,
		Image:         c.Image,
	}
}

// CoinDetail is the detail document for a single coin.
type CoinDetail struct {
	ID          string         `json:"id"`
	Symbol      string         `json:"symbol"`
	Name        string         `json:"name"`
	Image       CoinImage      `json:"image"`
	MarketData  CoinMarketData `json:"market_data"`
	LastUpdated string         `json:"last_updated"`
}

// CoinImage holds the image URLs of a coin in three sizes.
type CoinImage struct {
	Thumb string `json:"thumb"`
	Small string `json:"small"`
	Large string `json:"large"`
}

// CoinMarketData is the market block of a coin detail document. Price-like fields
// are keyed by quote currency.
type CoinMarketData struct {
	CurrentPrice                 map[string]float64 `json:"current_price"`
	MarketCap                    map[string]float64 `json:"market_cap"`
	MarketCapRank                int                `json:"market_cap_rank"`
	TotalVolume                  map[string]float64 `json:"total_volume"`
	High24h                      map[string]float64 `json:"high_24h"`
	Low24h                       map[string]float64 `json:"low_24h"`
	PriceChange24h               float64            `json:"price_change_24h"`
	PriceChangePercentage24h     float64            `json:"price_change_percentage_24h"`
	MarketCapChange24h           float64            `json:"market_cap_change_24h"`
	MarketCapChangePercentage24h float64            `json:"market_cap_change_percentage_24h"`
	CirculatingSupply            float64            `json:"circulating_supply"`
	TotalSupply                  *float64           `json:"total_supply"`
	MaxSupply                    *float64           `json:"max_supply"`
}

// Quote projects the detail document onto the unified quote view in USD.
func (d CoinDetail) Quote() Quote {
	return Quote{
		ID:            d.ID,
		Kind:          AssetKindCrypto,
		Name:          d.Name,
		Ticker:        d.Symbol,
		Price:         d.MarketData.CurrentPrice["usd"],
		Change24h:     d.MarketData.PriceChange24h,
		ChangePercent: d.MarketData.PriceChangePercentage24h,
		MarketCap:     d.MarketData.MarketCap["usd"],
		Volume:        d.MarketData.TotalVolume["usd"],
		Image:         d.Image.Large,
	}
}

// CoinSearchResult is a single hit of a coin search.
type CoinSearchResult struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
	Large         string `json:"large"`
}

// GlobalData is the aggregate crypto market snapshot.
type GlobalData struct {
	ActiveCryptocurrencies          int                `json:"active_cryptocurrencies"`
	UpcomingICOs                    int                `json:"upcoming_icos"`
	OngoingICOs                     int                `json:"ongoing_icos"`
	EndedICOs                       int                `json:"ended_icos"`
	Markets                         int                `json:"markets"`
	TotalMarketCap                  map[string]float64 `json:"total_market_cap"`
	TotalVolume                     map[string]float64 `json:"total_volume"`
	MarketCapPercentage             map[string]float64 `json:"market_cap_percentage"`
	MarketCapChangePercentage24hUSD float64            `json:"market_cap_change_percentage_24h_usd"`
	UpdatedAt                       int64              `json:"updated_at"`
}

// UpdatedTime returns UpdatedAt as a time. Values above 1e12 are treated as
// milliseconds, the rest as seconds.
func (g GlobalData) UpdatedTime() time.Time {
	if g.UpdatedAt > 1e12 {
		return time.UnixMilli(g.UpdatedAt)
	}
	return time.Unix(g.UpdatedAt, 0)
}
