package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-dashboard/internal/entity"
	"market-dashboard/pkg/logger"
	"market-dashboard/pkg/utils"
)

func newTestValuationService(store MarketStore) *valuationService {
	svc := NewValuationService(logger.NewNop(), utils.NewRandom(5), store).(*valuationService)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestValuationService_Project(t *testing.T) {
	svc := newTestValuationService(nil)

	p, err := svc.Project(context.Background(), "bitcoin", 2030)
	require.NoError(t, err)

	assert.Equal(t, "Bitcoin", p.AssetName)
	assert.Equal(t, "BTC", p.Symbol)
	assert.Equal(t, 64352.0, p.BasePrice)
	require.Len(t, p.ChartData, 5)
	assert.Equal(t, 2026, p.ChartData[0].Year)
	assert.Equal(t, 2030, p.ChartData[4].Year)

	first := p.ChartData[0]
	assert.Equal(t, 64352.0, first.Conservative)
	assert.Equal(t, 64352.0, first.Moderate)
	assert.Equal(t, 64352.0, first.Optimistic)

	last := p.ChartData[len(p.ChartData)-1]
	assert.Equal(t, last.Conservative, p.Valuation[entity.ScenarioConservative])
	assert.Equal(t, last.Moderate, p.Valuation[entity.ScenarioModerate])
	assert.Equal(t, last.Optimistic, p.Valuation[entity.ScenarioOptimistic])

	for i := 1; i < len(p.ChartData); i++ {
		prev, cur := p.ChartData[i-1], p.ChartData[i]
		// 5% growth with at worst -5% noise still grows.
		assert.Greater(t, cur.Conservative, prev.Conservative*0.99)
		assert.GreaterOrEqual(t, cur.Optimistic, cur.Moderate)
		assert.GreaterOrEqual(t, cur.Moderate, cur.Conservative)
		assert.Equal(t, cur.Moderate, math.Round(cur.Moderate*100)/100)
	}

	assert.GreaterOrEqual(t, len(p.Factors), 3)
	assert.LessOrEqual(t, len(p.Factors), 5)
	seen := make(map[string]bool)
	for _, f := range p.Factors {
		assert.Contains(t, valuationFactors, f)
		assert.False(t, seen[f])
		seen[f] = true
	}
	assert.Contains(t, p.Reasoning, "Bitcoin")
	assert.Contains(t, p.Reasoning, "2030")
}

func TestValuationService_ReasoningTemplates(t *testing.T) {
	svc := newTestValuationService(nil)
	require.Len(t, reasoningTemplates, 4)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		p, err := svc.Project(context.Background(), "ethereum", 2028)
		require.NoError(t, err)
		seen[p.Reasoning] = true
	}
	assert.Len(t, seen, 4)
	assert.True(t, seen["The 2028 prediction for Ethereum reflects analysis of market penetration, technical innovation, and institutional adoption curves. The model considers varying economic scenarios and regulatory environments."])
}

func TestValuationService_CurrentYearOnly(t *testing.T) {
	svc := newTestValuationService(nil)
	p, err := svc.Project(context.Background(), "dogecoin", 2026)
	require.NoError(t, err)
	require.Len(t, p.ChartData, 1)
	assert.Equal(t, 0.15, p.Valuation[entity.ScenarioModerate])
}

func TestValuationService_Errors(t *testing.T) {
	svc := newTestValuationService(nil)

	_, err := svc.Project(context.Background(), "shiba", 2030)
	require.ErrorIs(t, err, ErrUnknownAsset)

	_, err = svc.Project(context.Background(), "bitcoin", 2025)
	require.ErrorIs(t, err, ErrInvalidTargetYear)

	_, err = svc.Project(context.Background(), "bitcoin", 2026+maxValuationHorizonYears+1)
	require.ErrorIs(t, err, ErrInvalidTargetYear)
}

func TestValuationService_UsesListedPrice(t *testing.T) {
	f := newStoreFixture()
	_, err := f.store.FetchTopCoins(context.Background(), 5)
	require.NoError(t, err)

	svc := newTestValuationService(f.store)
	p, err := svc.Project(context.Background(), "ethereum", 2027)
	require.NoError(t, err)
	assert.Equal(t, 3400.0, p.BasePrice)

	p, err = svc.Project(context.Background(), "solana", 2027)
	require.NoError(t, err)
	assert.Equal(t, 145.0, p.BasePrice)
}

func TestValuationService_Catalogue(t *testing.T) {
	svc := newTestValuationService(nil)
	cat := svc.Catalogue()
	require.Len(t, cat, 8)
	cat[0].Name = "changed"
	assert.Equal(t, "Bitcoin", svc.Catalogue()[0].Name)
}
