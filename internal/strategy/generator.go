// Package strategy реализует детерминированную генерацию инвестиционных
// стратегий по профилю пользователя и списку пулов. Никаких побочных
// эффектов: одинаковый порядок пулов дает одинаковый результат.
package strategy

import (
	"fmt"
	"sort"

	"yield-farm-api/internal/storages"
)

// Profile инвестиционный профиль пользователя
type Profile struct {
	InvestmentAmount float64 `json:"investment_amount"`
	ExpectedReturns  float64 `json:"expected_returns"`
	TargetAPY        float64 `json:"target_apy"`
}

// Allocation распределение части суммы в конкретный пул
type Allocation struct {
	PoolID              int64   `json:"pool_id"`
	PoolName            string  `json:"pool_name"`
	TokenSymbol         string  `json:"token_symbol"`
	APY                 float64 `json:"apy"`
	AllocatedAmount     float64 `json:"allocated_amount"`
	AllocatedPercentage float64 `json:"allocated_percentage"`
	ExpectedReturn      float64 `json:"expected_return"`
}

// Strategy именованная стратегия с распределением по пулам
type Strategy struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	RiskLevel       string       `json:"risk_level"` // low, medium, high
	RiskScore       int          `json:"risk_score"` // 1-10
	RewardPotential int          `json:"reward_potential"`
	TotalAPY        float64      `json:"total_apy"`
	ProjectedReturn float64      `json:"projected_return"`
	Allocations     []Allocation `json:"allocations"`
	Pros            []string     `json:"pros"`
	Cons            []string     `json:"cons"`
	Timeframe       string       `json:"timeframe"`
}

// Generate строит 3-4 стратегии: Conservative, Balanced, Aggressive и,
// если задан целевой APY и он достижим, Target-APY. Target-APY вариант
// единственный, который может отсутствовать.
func Generate(profile Profile, pools []storages.Pool) []Strategy {
	sorted := make([]storages.Pool, len(pools))
	copy(sorted, pools)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].APY > sorted[j].APY
	})

	strategies := []Strategy{
		conservative(profile, sorted),
		balanced(profile, sorted),
		aggressive(profile, sorted),
	}

	if profile.TargetAPY > 0 {
		if target := targetAPY(profile, sorted); target != nil {
			strategies = append(strategies, *target)
		}
	}

	return strategies
}

func conservative(profile Profile, pools []storages.Pool) Strategy {
	// Стабильные пулы с умеренным APY и заметным TVL
	stable := filterPools(pools, func(p storages.Pool) bool {
		return p.APY >= 5 && p.APY <= 15 && p.TotalStaked > 100000
	})
	if len(stable) == 0 {
		stable = filterPools(pools, func(p storages.Pool) bool {
			return p.APY >= 5 && p.APY <= 15
		})
	}
	if len(stable) == 0 {
		stable = filterPools(pools, func(p storages.Pool) bool {
			return p.APY >= 5 && p.APY <= 30
		})
	}
	if len(stable) == 0 {
		stable = head(pools, 3)
	}

	allocations := equalAllocations(profile.InvestmentAmount, head(stable, 3))
	totalAPY := weightedAPY(allocations)

	return Strategy{
		ID:              "conservative",
		Name:            "Conservative Growth",
		Description:     "Low-risk strategy focusing on established pools with proven track records. Diversified across multiple stable pools to minimize volatility.",
		RiskLevel:       "low",
		RiskScore:       3,
		RewardPotential: 5,
		TotalAPY:        totalAPY,
		ProjectedReturn: profile.InvestmentAmount * totalAPY / 100,
		Allocations:     allocations,
		Pros: []string{
			"Lower volatility and risk",
			"Established pools with high liquidity",
			"Diversified across multiple pools",
			"Suitable for long-term holdings",
		},
		Cons: []string{
			"Lower potential returns",
			"May not meet aggressive growth targets",
			"Limited exposure to high-yield opportunities",
		},
		Timeframe: "Long-term (6-12+ months)",
	}
}

func balanced(profile Profile, pools []storages.Pool) Strategy {
	stable := head(filterPools(pools, func(p storages.Pool) bool {
		return p.APY >= 5 && p.APY <= 15 && p.TotalStaked > 100000
	}), 2)
	moderate := head(filterPools(pools, func(p storages.Pool) bool {
		return p.APY > 15 && p.APY <= 50 && p.TotalStaked > 50000
	}), 2)

	if len(stable) == 0 {
		stable = head(filterPools(pools, func(p storages.Pool) bool {
			return p.APY >= 5 && p.APY <= 15
		}), 2)
	}
	if len(stable) == 0 {
		stable = head(pools, 2)
	}

	if len(moderate) == 0 {
		moderate = head(filterPools(pools, func(p storages.Pool) bool {
			return p.APY > 15 && p.APY <= 50
		}), 2)
	}
	if len(moderate) == 0 {
		moderate = slicePools(pools, 2, 4)
	}

	// 60% в стабильные пулы, 40% в умеренные
	var allocations []Allocation
	allocations = append(allocations, splitAllocations(profile.InvestmentAmount, profile.InvestmentAmount*0.6, stable)...)
	allocations = append(allocations, splitAllocations(profile.InvestmentAmount, profile.InvestmentAmount*0.4, moderate)...)

	totalAPY := weightedAPY(allocations)

	return Strategy{
		ID:              "balanced",
		Name:            "Balanced Growth",
		Description:     "Balanced risk-reward strategy combining stable pools with higher-yield opportunities. 60% in established pools, 40% in moderate-risk pools.",
		RiskLevel:       "medium",
		RiskScore:       5,
		RewardPotential: 7,
		TotalAPY:        totalAPY,
		ProjectedReturn: profile.InvestmentAmount * totalAPY / 100,
		Allocations:     allocations,
		Pros: []string{
			"Balanced risk-reward ratio",
			"Exposure to both stable and high-yield pools",
			"Good diversification",
			"Moderate growth potential",
		},
		Cons: []string{
			"Moderate risk exposure",
			"May not maximize returns",
			"Requires active monitoring",
		},
		Timeframe: "Medium-term (3-6 months)",
	}
}

func aggressive(profile Profile, pools []storages.Pool) Strategy {
	highYield := head(filterPools(pools, func(p storages.Pool) bool {
		return p.APY > 20 && p.APY < 500
	}), 4)
	if len(highYield) == 0 {
		highYield = head(pools, 4)
	}

	// 70% в два лучших по APY, 30% в следующие два
	primary := head(highYield, 2)
	secondary := slicePools(highYield, 2, 4)

	var allocations []Allocation
	allocations = append(allocations, splitAllocations(profile.InvestmentAmount, profile.InvestmentAmount*0.7, primary)...)
	allocations = append(allocations, splitAllocations(profile.InvestmentAmount, profile.InvestmentAmount*0.3, secondary)...)

	totalAPY := weightedAPY(allocations)

	return Strategy{
		ID:              "aggressive",
		Name:            "Aggressive Growth",
		Description:     "High-risk, high-reward strategy targeting maximum returns. Concentrated in top-performing pools with highest APY.",
		RiskLevel:       "high",
		RiskScore:       8,
		RewardPotential: 9,
		TotalAPY:        totalAPY,
		ProjectedReturn: profile.InvestmentAmount * totalAPY / 100,
		Allocations:     allocations,
		Pros: []string{
			"Maximum potential returns",
			"Exposure to highest-yield opportunities",
			"Quick profit potential",
			"Higher APY than conservative strategies",
		},
		Cons: []string{
			"Higher volatility and risk",
			"Pool stability may vary",
			"Requires active management",
			"Potential for larger losses",
		},
		Timeframe: "Short to Medium-term (1-3 months)",
	}
}

// targetAPY возвращает nil, когда подходящих пулов нет
func targetAPY(profile Profile, pools []storages.Pool) *Strategy {
	target := profile.TargetAPY

	suitable := filterPools(pools, func(p storages.Pool) bool {
		return p.APY >= target*0.7 && p.APY < 500
	})
	if len(suitable) == 0 {
		return nil
	}

	selected := head(suitable, 3)

	var allocations []Allocation
	if selected[0].APY >= target {
		// Лучший пул уже покрывает цель, достаточно равного распределения
		allocations = equalAllocations(profile.InvestmentAmount, selected)
	} else {
		allocations = rankWeightedAllocations(profile.InvestmentAmount, selected)
	}

	totalAPY := weightedAPY(allocations)

	riskLevel := "medium"
	riskScore := 5
	if target < 15 {
		riskLevel = "low"
		riskScore = 3
	} else if target > 30 {
		riskLevel = "high"
		riskScore = 7
	}

	rewardPotential := int(target/10) + 3
	if rewardPotential > 10 {
		rewardPotential = 10
	}

	return &Strategy{
		ID:              "target-apy",
		Name:            fmt.Sprintf("Target %.0f%% APY Strategy", target),
		Description:     fmt.Sprintf("Custom strategy optimized to achieve your target %.0f%% APY. Allocations are weighted to maximize returns while managing risk.", target),
		RiskLevel:       riskLevel,
		RiskScore:       riskScore,
		RewardPotential: rewardPotential,
		TotalAPY:        totalAPY,
		ProjectedReturn: profile.InvestmentAmount * totalAPY / 100,
		Allocations:     allocations,
		Pros: []string{
			fmt.Sprintf("Optimized for %.0f%% target APY", target),
			"Custom allocation based on your goals",
			"Balanced pool selection",
			"Meets your expected returns",
		},
		Cons: []string{
			"Target may not always be achievable",
			"Market conditions may vary",
			"Requires monitoring",
		},
		Timeframe: "Custom based on target",
	}
}

func filterPools(pools []storages.Pool, keep func(storages.Pool) bool) []storages.Pool {
	var out []storages.Pool
	for _, p := range pools {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func head(pools []storages.Pool, n int) []storages.Pool {
	if len(pools) < n {
		n = len(pools)
	}
	return pools[:n]
}

func slicePools(pools []storages.Pool, from, to int) []storages.Pool {
	if from > len(pools) {
		from = len(pools)
	}
	if to > len(pools) {
		to = len(pools)
	}
	return pools[from:to]
}

func newAllocation(pool storages.Pool, amount, total float64) Allocation {
	return Allocation{
		PoolID:              pool.ID,
		PoolName:            pool.Name,
		TokenSymbol:         pool.TokenSymbol,
		APY:                 pool.APY,
		AllocatedAmount:     amount,
		AllocatedPercentage: amount / total * 100,
		ExpectedReturn:      amount * pool.APY / 100,
	}
}

// equalAllocations делит всю сумму поровну между пулами
func equalAllocations(total float64, pools []storages.Pool) []Allocation {
	if len(pools) == 0 {
		return nil
	}
	perPool := total / float64(len(pools))
	allocations := make([]Allocation, 0, len(pools))
	for _, p := range pools {
		allocations = append(allocations, newAllocation(p, perPool, total))
	}
	return allocations
}

// splitAllocations делит часть суммы поровну между пулами, проценты
// считаются от полной суммы
func splitAllocations(total, part float64, pools []storages.Pool) []Allocation {
	if len(pools) == 0 {
		return nil
	}
	perPool := part / float64(len(pools))
	allocations := make([]Allocation, 0, len(pools))
	for _, p := range pools {
		allocations = append(allocations, newAllocation(p, perPool, total))
	}
	return allocations
}

// rankWeightedAllocations взвешивает пулы по убыванию APY:
// weight_i = (n-i) / sum(n-j)
func rankWeightedAllocations(total float64, pools []storages.Pool) []Allocation {
	n := len(pools)
	denom := 0
	for i := range pools {
		denom += n - i
	}

	allocations := make([]Allocation, 0, n)
	for i, p := range pools {
		amount := total * float64(n-i) / float64(denom)
		allocations = append(allocations, newAllocation(p, amount, total))
	}
	return allocations
}

func weightedAPY(allocations []Allocation) float64 {
	var total, weighted float64
	for _, a := range allocations {
		total += a.AllocatedAmount
	}
	if total == 0 {
		return 0
	}
	for _, a := range allocations {
		weighted += a.APY * a.AllocatedAmount / total
	}
	return weighted
}

// RiskAdjustedReturn простая риск-взвешенная доходность: APY / риск
func RiskAdjustedReturn(s Strategy) float64 {
	if s.RiskScore == 0 {
		return 0
	}
	return s.TotalAPY / float64(s.RiskScore)
}
