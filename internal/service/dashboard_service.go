package service

import (
	"context"
	"fmt"

	"yield-farm-api/internal/storages"
)

// DashboardOverview сводка портфеля пользователя
type DashboardOverview struct {
	AvailableBalance float64           `json:"available_balance"`
	TotalStaked      float64           `json:"total_staked"`
	PendingRewards   float64           `json:"pending_rewards"`
	TotalEarned      float64           `json:"total_earned"`
	ActivePositions  []ActiveStakeView `json:"active_positions"`
}

// DashboardOverview возвращает сводку портфеля: доступный баланс, сумму
// в стейках, накопленные и уже выплаченные награды и активные позиции
func (s *FarmService) DashboardOverview(ctx context.Context, userID int64) (*DashboardOverview, error) {
	overview, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	positions, err := s.ActiveStakes(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalEarned, err := s.storage.GetTotalEarned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	return &DashboardOverview{
		AvailableBalance: overview.Balance,
		TotalStaked:      overview.StakedBalance,
		PendingRewards:   overview.PendingRewards,
		TotalEarned:      totalEarned,
		ActivePositions:  positions,
	}, nil
}

// RewardHistory возвращает страницу выплаченных наград, новые первыми
func (s *FarmService) RewardHistory(ctx context.Context, userID int64, limit, offset int) ([]storages.Reward, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rewardRows, total, err := s.storage.GetUserRewards(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	return rewardRows, total, nil
}
