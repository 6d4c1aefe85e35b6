package entity

// Stock is a quote snapshot of an equity.
type Stock struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	MarketCap     float64 `json:"marketCap"`
	Volume        float64 `json:"volume"`
}

// Quote projects the stock onto the unified quote view.
func (s Stock) Quote() Quote {
	return Quote{
		ID:            s.Symbol,
		Kind:          AssetKindStock,
		Name:          s.Name,
		Ticker:        s.Symbol,
		Price:         s.Price,
		Change24h:     s.Change,
		ChangePercent: s.ChangePercent,
		MarketCap:     s.MarketCap,
		Volume:        s.Volume,
	}
}
