package repository

import (
	"strings"
	"time"

	"market-dashboard/internal/entity"
	"market-dashboard/pkg/utils"
)

type fallbackCoin struct {
	coin        entity.Coin
	basePrice   float64
	volatility  float64
	sparkBase   float64
	sparkSpread float64
}

const (
	defaultChartBasePrice  = 100.0
	defaultChartVolatility = 5.0
	sparklinePoints        = 168
)

var fallbackCoins = []fallbackCoin{
	{
		coin: entity.Coin{
			ID: "bitcoin", Symbol: "btc", Name: "Bitcoin",
			Image:                         "https://assets.coingecko.com/coins/images/1/large/bitcoin.png",
			CurrentPrice:                  63581.12,
			MarketCap:                     1235879654321,
			MarketCapRank:                 1,
			FullyDilutedValuation:         utils.ToPointer(1335879654321.0),
			TotalVolume:                   32659874521,
			High24h:                       64821.36,
			Low24h:                        62953.84,
			PriceChange24h:                521.36,
			PriceChangePercentage24h:      0.85,
			MarketCapChange24h:            10254789652,
			MarketCapChangePercentage24h:  0.81,
			CirculatingSupply:             19412456,
			TotalSupply:                   utils.ToPointer(21000000.0),
			MaxSupply:                     utils.ToPointer(21000000.0),
			ATH:                           68789.63,
			ATHChangePercentage:           -7.24,
			ATHDate:                       "2021-11-10T14:24:11.849Z",
			ATL:                           67.81,
			ATLChangePercentage:           93982.54,
			ATLDate:                       "2013-07-06T00:00:00.000Z",
			PriceChangePercentage7dInCur:  utils.ToPointer(3.45),
			PriceChangePercentage30dInCur: utils.ToPointer(8.76),
		},
		basePrice: 63000, volatility: 2000, sparkBase: 63000, sparkSpread: 2000,
	},
	{
		coin: entity.Coin{
			ID: "ethereum", Symbol: "eth", Name: "Ethereum",
			Image:                         "https://assets.coingecko.com/coins/images/279/large/ethereum.png",
			CurrentPrice:                  3458.93,
			MarketCap:                     415687412563,
			MarketCapRank:                 2,
			FullyDilutedValuation:         utils.ToPointer(415687412563.0),
			TotalVolume:                   17524893652,
			High24h:                       3512.25,
			Low24h:                        3421.56,
			PriceChange24h:                25.32,
			PriceChangePercentage24h:      0.73,
			MarketCapChange24h:            3045871256,
			MarketCapChangePercentage24h:  0.74,
			CirculatingSupply:             120254786,
			ATH:                           4878.26,
			ATHChangePercentage:           -28.95,
			ATHDate:                       "2021-11-10T14:24:19.604Z",
			ATL:                           0.432979,
			ATLChangePercentage:           799328.44,
			ATLDate:                       "2015-10-20T00:00:00.000Z",
			PriceChangePercentage7dInCur:  utils.ToPointer(2.31),
			PriceChangePercentage30dInCur: utils.ToPointer(5.67),
		},
		basePrice: 3400, volatility: 200, sparkBase: 3400, sparkSpread: 200,
	},
	{
		coin: entity.Coin{
			ID: "tether", Symbol: "usdt", Name: "Tether",
			Image:                         "https://assets.coingecko.com/coins/images/325/large/Tether.png",
			CurrentPrice:                  1.0,
			MarketCap:                     96574125863,
			MarketCapRank:                 3,
			FullyDilutedValuation:         utils.ToPointer(96574125863.0),
			TotalVolume:                   64859741258,
			High24h:                       1.001,
			Low24h:                        0.998,
			PriceChange24h:                0.00001,
			PriceChangePercentage24h:      0.001,
			MarketCapChange24h:            102458963,
			MarketCapChangePercentage24h:  0.11,
			CirculatingSupply:             96574125863,
			TotalSupply:                   utils.ToPointer(96574125863.0),
			ATH:                           1.32,
			ATHChangePercentage:           -24.21,
			ATHDate:                       "2018-07-24T00:00:00.000Z",
			ATL:                           0.572521,
			ATLChangePercentage:           74.67,
			ATLDate:                       "2015-03-02T00:00:00.000Z",
			PriceChangePercentage7dInCur:  utils.ToPointer(0.01),
			PriceChangePercentage30dInCur: utils.ToPointer(0.02),
		},
		basePrice: 1, volatility: 0.004, sparkBase: 0.998, sparkSpread: 0.004,
	},
	{
		coin: entity.Coin{
			ID: "binancecoin", Symbol: "bnb", Name: "BNB",
			Image:                         "https://assets.coingecko.com/coins/images/825/large/bnb-icon2_2x.png",
			CurrentPrice:                  608.24,
			MarketCap:                     94125874125,
			MarketCapRank:                 4,
			FullyDilutedValuation:         utils.ToPointer(94125874125.0),
			TotalVolume:                   1245789563,
			High24h:                       612.45,
			Low24h:                        601.23,
			PriceChange24h:                5.23,
			PriceChangePercentage24h:      0.87,
			MarketCapChange24h:            812457896,
			MarketCapChangePercentage24h:  0.87,
			CirculatingSupply:             154533651,
			TotalSupply:                   utils.ToPointer(154533651.0),
			MaxSupply:                     utils.ToPointer(200000000.0),
			ATH:                           686.31,
			ATHChangePercentage:           -11.42,
			ATHDate:                       "2021-05-10T07:24:17.097Z",
			ATL:                           0.0398177,
			ATLChangePercentage:           1527177.67,
			ATLDate:                       "2017-10-19T00:00:00.000Z",
			PriceChangePercentage7dInCur:  utils.ToPointer(1.23),
			PriceChangePercentage30dInCur: utils.ToPointer(3.45),
		},
		basePrice: 600, volatility: 20, sparkBase: 600, sparkSpread: 20,
	},
	{
		coin: entity.Coin{
			ID: "solana", Symbol: "sol", Name: "Solana",
			Image:                         "https://assets.coingecko.com/coins/images/4128/large/solana.png",
			CurrentPrice:                  143.52,
			MarketCap:                     59745812563,
			MarketCapRank:                 5,
			FullyDilutedValuation:         utils.ToPointer(78541256325.0),
			TotalVolume:                   2154789563,
			High24h:                       146.25,
			Low24h:                        140.12,
			PriceChange24h:                2.15,
			PriceChangePercentage24h:      1.52,
			MarketCapChange24h:            891245786,
			MarketCapChangePercentage24h:  1.51,
			CirculatingSupply:             415874125,
			TotalSupply:                   utils.ToPointer(542145785.0),
			ATH:                           259.96,
			ATHChangePercentage:           -44.86,
			ATHDate:                       "2021-11-06T21:54:35.825Z",
			ATL:                           0.50428,
			ATLChangePercentage:           28361.53,
			ATLDate:                       "2020-05-11T19:35:23.449Z",
			PriceChangePercentage7dInCur:  utils.ToPointer(5.67),
			PriceChangePercentage30dInCur: utils.ToPointer(12.34),
		},
		basePrice: 140, volatility: 10, sparkBase: 140, sparkSpread: 10,
	},
}

// marketFallback produces the substitute records served when the market-data API
// is unreachable.
type marketFallback struct {
	rnd *utils.Random
	now func() time.Time
}

func findFallbackCoin(id string) (fallbackCoin, bool) {
	for _, c := range fallbackCoins {
		if c.coin.ID == id {
			return c, true
		}
	}
	return fallbackCoin{}, false
}

func (f *marketFallback) topCoins(limit int) []entity.Coin {
	if limit <= 0 || limit > len(fallbackCoins) {
		limit = len(fallbackCoins)
	}

	updated := f.now().UTC().Format(time.RFC3339Nano)
	coins := make([]entity.Coin, 0, limit)
	for _, fc := range fallbackCoins[:limit] {
		c := fc.coin
		c.LastUpdated = updated
		prices := make([]float64, sparklinePoints)
		for i := range prices {
			prices[i] = fc.sparkBase + f.rnd.Float64()*fc.sparkSpread
		}
		c.SparklineIn7d = &entity.Sparkline{Price: prices}
		coins = append(coins, c)
	}
	return coins
}

func (f *marketFallback) coinDetail(id string) (*entity.CoinDetail, bool) {
	fc, ok := findFallbackCoin(id)
	if !ok {
		return nil, false
	}
	c := fc.coin
	return &entity.CoinDetail{
		ID:     c.ID,
		Symbol: c.Symbol,
		Name:   c.Name,
		Image:  entity.CoinImage{Thumb: c.Image, Small: c.Image, Large: c.Image},
		MarketData: entity.CoinMarketData{
			CurrentPrice:                 map[string]float64{"usd": c.CurrentPrice},
			MarketCap:                    map[string]float64{"usd": c.MarketCap},
			MarketCapRank:                c.MarketCapRank,
			TotalVolume:                  map[string]float64{"usd": c.TotalVolume},
			High24h:                      map[string]float64{"usd": c.High24h},
			Low24h:                       map[string]float64{"usd": c.Low24h},
			PriceChange24h:               c.PriceChange24h,
			PriceChangePercentage24h:     c.PriceChangePercentage24h,
			MarketCapChange24h:           c.MarketCapChange24h,
			MarketCapChangePercentage24h: c.MarketCapChangePercentage24h,
			CirculatingSupply:            c.CirculatingSupply,
			TotalSupply:                  c.TotalSupply,
			MaxSupply:                    c.MaxSupply,
		},
		LastUpdated: f.now().UTC().Format(time.RFC3339Nano),
	}, true
}

// marketChart synthesizes days*24 hourly samples around the coin's base price.
func (f *marketFallback) marketChart(id string, days int) *entity.MarketChart {
	base, volatility := defaultChartBasePrice, defaultChartVolatility
	if fc, ok := findFallbackCoin(id); ok {
		base, volatility = fc.basePrice, fc.volatility
	}

	points := days * 24
	now := f.now()
	chart := &entity.MarketChart{
		Prices:       make([][2]float64, 0, points),
		MarketCaps:   make([][2]float64, 0, points),
		TotalVolumes: make([][2]float64, 0, points),
	}
	for i := 0; i < points; i++ {
		ts := float64(now.Add(-time.Duration(points-i) * time.Hour).UnixMilli())
		price := base + (f.rnd.Float64()-0.5)*2*volatility
		chart.Prices = append(chart.Prices, [2]float64{ts, price})
		chart.MarketCaps = append(chart.MarketCaps, [2]float64{ts, price * 1000000})
		chart.TotalVolumes = append(chart.TotalVolumes, [2]float64{ts, f.rnd.Float64() * 10000000000})
	}
	return chart
}

func (f *marketFallback) globalData() *entity.GlobalData {
	return &entity.GlobalData{
		ActiveCryptocurrencies: 10000,
		UpcomingICOs:           0,
		OngoingICOs:            50,
		EndedICOs:              3375,
		Markets:                700,
		TotalMarketCap:         map[string]float64{"usd": 2400000000000},
		TotalVolume:            map[string]float64{"usd": 110000000000},
		MarketCapPercentage: map[string]float64{
			"btc": 51.7,
			"eth": 17.3,
			"usdt": 4.1,
			"bnb": 3.9,
			"sol": 2.5,
		},
		MarketCapChangePercentage24hUSD: 1.2,
		UpdatedAt:                       f.now().UnixMilli(),
	}
}

func (f *marketFallback) search(query string) []entity.CoinSearchResult {
	q := strings.ToLower(query)
	results := make([]entity.CoinSearchResult, 0)
	for _, fc := range fallbackCoins {
		c := fc.coin
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Symbol), q) {
			results = append(results, entity.CoinSearchResult{
				ID:            c.ID,
				Name:          c.Name,
				Symbol:        c.Symbol,
				MarketCapRank: c.MarketCapRank,
				Thumb:         c.Image,
				Large:         c.Image,
			})
		}
	}
	return results
}
