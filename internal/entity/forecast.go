package entity

// Direction is the forecast price direction.
type Direction string

const (
	DirectionUp       Direction = "up"
	DirectionDown     Direction = "down"
	DirectionSideways Direction = "sideways"
)

// RiskLevel buckets a volatility score.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskExtreme RiskLevel = "extreme"
)

// RiskLevelFromVolatility buckets a volatility score in [0, 100).
func RiskLevelFromVolatility(v float64) RiskLevel {
	switch {
	case v < 25:
		return RiskLow
	case v < 50:
		return RiskMedium
	case v < 75:
		return RiskHigh
	default:
		return RiskExtreme
	}
}

// Forecast is a synthetic short-term price call.
type Forecast struct {
	Asset        string    `json:"asset"`
	Direction    Direction `json:"direction"`
	Confidence   float64   `json:"confidence"`
	TargetChange float64   `json:"targetChange"`
}

// RiskAssessment accompanies a forecast.
type RiskAssessment struct {
	VolatilityScore float64   `json:"volatilityScore"`
	MarketRisk      RiskLevel `json:"marketRisk"`
	StabilityIndex  float64   `json:"stabilityIndex"`
}

// Predictions groups the forecast and risk views produced together.
type Predictions struct {
	Forecast       *Forecast       `json:"forecast"`
	RiskAssessment *RiskAssessment `json:"riskAssessment"`
}

// Scenario names a long-horizon growth assumption.
type Scenario string

const (
	ScenarioConservative Scenario = "conservative"
	ScenarioModerate     Scenario = "moderate"
	ScenarioOptimistic   Scenario = "optimistic"
)

// ValuationPoint is one year of a valuation projection.
type ValuationPoint struct {
	Year         int     `json:"year"`
	Conservative float64 `json:"conservative"`
	Moderate     float64 `json:"moderate"`
	Optimistic   float64 `json:"optimistic"`
}

// ValuationProjection is a multi-year price projection under three scenarios.
type ValuationProjection struct {
	AssetID    string               `json:"assetId"`
	AssetName  string               `json:"assetName"`
	Symbol     string               `json:"symbol"`
	BasePrice  float64              `json:"basePrice"`
	TargetYear int                  `json:"targetYear"`
	Valuation  map[Scenario]float64 `json:"valuation"`
	Reasoning  string               `json:"reasoning"`
	Factors    []string             `json:"factors"`
	ChartData  []ValuationPoint     `json:"chartData"`
}
