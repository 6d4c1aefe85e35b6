package service

import (
	"math"

	"github.com/shopspring/decimal"

	"market-dashboard/internal/entity"
	"market-dashboard/pkg/utils"
)

var (
	directions       = []entity.Direction{entity.DirectionUp, entity.DirectionDown, entity.DirectionSideways}
	directionWeights = []float64{0.45, 0.35, 0.2}
)

// PredictionService produces synthetic short-term forecasts. The output does not
// depend on market data.
type PredictionService interface {
	Generate(asset string) entity.Predictions
}

type predictionService struct {
	rnd *utils.Random
}

// NewPredictionService creates a PredictionService drawing from rnd.
func NewPredictionService(rnd *utils.Random) PredictionService {
	if rnd == nil {
		rnd = utils.NewTimeSeededRandom()
	}
	return &predictionService{rnd: rnd}
}

func pickDirection(roll float64) entity.Direction {
	cumulative := 0.0
	for i, w := range directionWeights {
		cumulative += w
		if roll <= cumulative {
			return directions[i]
		}
	}
	return directions[len(directions)-1]
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func (s *predictionService) Generate(asset string) entity.Predictions {
	direction := pickDirection(s.rnd.Float64())
	confidence := s.rnd.Between(0.5, 0.9)

	var target float64
	switch direction {
	case entity.DirectionUp:
		target = 1 + s.rnd.Float64()*10
	case entity.DirectionDown:
		target = -1 - s.rnd.Float64()*10
	default:
		target = 0.5 - s.rnd.Float64()
	}

	volatility := s.rnd.Float64() * 100

	return entity.Predictions{
		Forecast: &entity.Forecast{
			Asset:        asset,
			Direction:    direction,
			Confidence:   confidence,
			TargetChange: round2(target),
		},
		RiskAssessment: &entity.RiskAssessment{
			VolatilityScore: volatility,
			MarketRisk:      entity.RiskLevelFromVolatility(volatility),
			StabilityIndex:  math.Round((100-volatility)/10) / 10,
		},
	}
}
