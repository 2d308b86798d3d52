package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yield-farm-api/internal/storages"
)

func testPools() []storages.Pool {
	return []storages.Pool{
		{ID: 1, Name: "aave USDC", TokenSymbol: "USDC", APY: 6, TotalStaked: 500000},
		{ID: 2, Name: "compound DAI", TokenSymbol: "DAI", APY: 9, TotalStaked: 250000},
		{ID: 3, Name: "curve 3pool", TokenSymbol: "3CRV", APY: 14, TotalStaked: 120000},
		{ID: 4, Name: "uniswap ETH-USDC", TokenSymbol: "ETH-USDC", APY: 24, TotalStaked: 90000},
		{ID: 5, Name: "sushi WETH", TokenSymbol: "WETH", APY: 38, TotalStaked: 60000},
		{ID: 6, Name: "degen FARM", TokenSymbol: "FARM", APY: 120, TotalStaked: 15000},
	}
}

func TestGenerateReturnsThreeBaseStrategies(t *testing.T) {
	profile := Profile{InvestmentAmount: 10000}

	strategies := Generate(profile, testPools())

	require.Len(t, strategies, 3)
	assert.Equal(t, "conservative", strategies[0].ID)
	assert.Equal(t, "balanced", strategies[1].ID)
	assert.Equal(t, "aggressive", strategies[2].ID)
}

func TestGenerateWithTargetAPY(t *testing.T) {
	profile := Profile{InvestmentAmount: 10000, TargetAPY: 20}

	strategies := Generate(profile, testPools())

	require.Len(t, strategies, 4)
	assert.Equal(t, "target-apy", strategies[3].ID)
}

func TestGenerateDeterministic(t *testing.T) {
	profile := Profile{InvestmentAmount: 10000, TargetAPY: 25}

	first := Generate(profile, testPools())
	second := Generate(profile, testPools())

	assert.Equal(t, first, second)
}

func TestAllocationsSumToInvestment(t *testing.T) {
	profile := Profile{InvestmentAmount: 10000, TargetAPY: 20}

	for _, s := range Generate(profile, testPools()) {
		var total float64
		for _, a := range s.Allocations {
			total += a.AllocatedAmount
		}
		assert.InDelta(t, profile.InvestmentAmount, total, 1e-6, "strategy %s", s.ID)
	}
}

func TestConservativeFallsBackToFirstPools(t *testing.T) {
	// Ни один пул не попадает в консервативные диапазоны APY
	pools := []storages.Pool{
		{ID: 1, Name: "a", APY: 700, TotalStaked: 1000},
		{ID: 2, Name: "b", APY: 650, TotalStaked: 1000},
	}

	strategies := Generate(Profile{InvestmentAmount: 1000}, pools)

	require.NotEmpty(t, strategies[0].Allocations)
	assert.Len(t, strategies[0].Allocations, 2)
}

func TestTargetAPYUnreachableReturnsNoStrategy(t *testing.T) {
	// Целевой APY настолько высок, что подходящих пулов нет
	strategies := Generate(Profile{InvestmentAmount: 1000, TargetAPY: 400}, testPools())

	assert.Len(t, strategies, 3)
}

func TestTargetAPYRankWeighting(t *testing.T) {
	pools := []storages.Pool{
		{ID: 1, Name: "a", APY: 18, TotalStaked: 100000},
		{ID: 2, Name: "b", APY: 16, TotalStaked: 100000},
		{ID: 3, Name: "c", APY: 15, TotalStaked: 100000},
	}

	// Лучший пул ниже цели, должно включиться ранговое взвешивание
	strategies := Generate(Profile{InvestmentAmount: 6000, TargetAPY: 20}, pools)
	require.Len(t, strategies, 4)

	target := strategies[3]
	require.Len(t, target.Allocations, 3)
	// Веса 3/6, 2/6, 1/6
	assert.InDelta(t, 3000, target.Allocations[0].AllocatedAmount, 1e-6)
	assert.InDelta(t, 2000, target.Allocations[1].AllocatedAmount, 1e-6)
	assert.InDelta(t, 1000, target.Allocations[2].AllocatedAmount, 1e-6)
}

func TestWeightedAPY(t *testing.T) {
	allocations := []Allocation{
		{APY: 10, AllocatedAmount: 750},
		{APY: 20, AllocatedAmount: 250},
	}

	assert.InDelta(t, 12.5, weightedAPY(allocations), 1e-9)
}

func TestGenerateEmptyPoolList(t *testing.T) {
	strategies := Generate(Profile{InvestmentAmount: 1000, TargetAPY: 10}, nil)

	// Стратегии строятся, но без распределений
	require.Len(t, strategies, 3)
	for _, s := range strategies {
		assert.Empty(t, s.Allocations)
	}
}
