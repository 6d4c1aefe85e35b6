package entity

import "time"

// PricePoint is one sample of a chart series.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// MarketChart is the raw chart response: [unix millis, value] pairs.
type MarketChart struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// PriceSeries converts the price pairs into an ordered series.
func (m MarketChart) PriceSeries() []PricePoint {
	series := make([]PricePoint, 0, len(m.Prices))
	for _, p := range m.Prices {
		series = append(series, PricePoint{
			Timestamp: time.UnixMilli(int64(p[0])),
			Price:     p[1],
		})
	}
	return series
}

// Candle is one day of equity history.
type Candle struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}
