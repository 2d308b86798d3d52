package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yield-farm-api/internal/rewards"
	"yield-farm-api/internal/storages"
	"yield-farm-api/pkg"
)

// ActiveStakeView активный стейк с присоединенными данными пула и
// накопленной наградой на момент запроса
type ActiveStakeView struct {
	ID            int64     `json:"id"`
	PoolID        int64     `json:"pool_id"`
	PoolName      string    `json:"pool_name"`
	TokenSymbol   string    `json:"token_symbol"`
	APY           float64   `json:"apy"`
	Amount        float64   `json:"amount"`
	PendingReward float64   `json:"pending_reward"`
	StakedAt      time.Time `json:"staked_at"`
}

// Stake размещает средства пользователя в пуле. Списание, создание стейка,
// обновление пула и запись журнала выполняются одной транзакцией хранилища.
func (s *FarmService) Stake(ctx context.Context, userID, poolID int64, amount float64) (*storages.Stake, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	pool, err := s.storage.GetPoolByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, storages.ErrNotFound) {
			return nil, ErrPoolInactive
		}
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}
	if !pool.IsActive {
		return nil, ErrPoolInactive
	}

	// Сумма, равная минимуму, проходит
	if amount < pool.MinStakeAmount {
		return nil, ErrBelowMinimum
	}

	// Лимит на пользователя действует только когда задан
	if pool.MaxStakePerUser > 0 {
		existing, err := s.storage.GetActiveStakesInPool(ctx, userID, poolID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
		}

		var alreadyStaked float64
		for _, st := range existing {
			alreadyStaked += st.Amount
		}
		if alreadyStaked+amount > pool.MaxStakePerUser {
			return nil, ErrAboveMaximum
		}
	}

	stake, err := s.storage.ExecuteStake(ctx, storages.StakeExecution{
		UserID: userID,
		PoolID: poolID,
		Amount: amount,
		Now:    time.Now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, storages.ErrInsufficientFunds):
			return nil, ErrInsufficientBalance
		case errors.Is(err, storages.ErrNotFound):
			return nil, ErrUserNotFound
		default:
			return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
		}
	}

	s.notifyLargeOperation(ctx, userID, storages.TransactionTypeStake, &poolID, amount)

	s.logger.Infof("Stake placed: UserID=%d, Pool=%s, Amount=%.2f", userID, pool.Name, amount)
	return stake, nil
}

// Unstake выводит средства из стейка полностью или частично. Накопленная
// награда рассчитывается до изменения и выплачивается вместе с суммой вывода.
// Нулевая или отрицательная сумма означает полный вывод.
func (s *FarmService) Unstake(ctx context.Context, userID, stakeID int64, amount float64) (*storages.StakeResult, error) {
	stake, err := s.getOwnedStake(ctx, userID, stakeID)
	if err != nil {
		return nil, err
	}
	if stake.Status != storages.StakeStatusActive {
		return nil, ErrStakeInactive
	}

	full := amount <= 0 || amount == stake.Amount
	if amount > stake.Amount {
		return nil, ErrExcessAmount
	}
	if full {
		amount = stake.Amount
	}

	pool, err := s.storage.GetPoolByID(ctx, stake.PoolID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	now := time.Now()
	reward := pkg.Round8(rewards.Pending(stake, pool.APY, now))

	err = s.storage.ExecuteUnstake(ctx, storages.UnstakeExecution{
		UserID:  userID,
		StakeID: stakeID,
		PoolID:  stake.PoolID,
		Amount:  amount,
		Reward:  reward,
		Full:    full,
		Now:     now,
	})
	if err != nil {
		switch {
		case errors.Is(err, storages.ErrNotFound):
			return nil, ErrStakeNotFound
		case errors.Is(err, storages.ErrInactive):
			return nil, ErrStakeInactive
		default:
			return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
		}
	}

	s.notifyLargeOperation(ctx, userID, storages.TransactionTypeUnstake, &stake.PoolID, amount)

	s.logger.Infof("Unstake completed: UserID=%d, Stake=%d, Amount=%.2f, Reward=%.8f, Full=%t",
		userID, stakeID, amount, reward, full)

	return &storages.StakeResult{
		UnstakedAmount: amount,
		RewardsClaimed: reward,
	}, nil
}

// Claim выплачивает накопленную награду стейка, не закрывая позицию
func (s *FarmService) Claim(ctx context.Context, userID, stakeID int64) (float64, error) {
	stake, err := s.getOwnedStake(ctx, userID, stakeID)
	if err != nil {
		return 0, err
	}
	if stake.Status != storages.StakeStatusActive {
		return 0, ErrStakeInactive
	}

	pool, err := s.storage.GetPoolByID(ctx, stake.PoolID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	now := time.Now()
	reward := pkg.Round8(rewards.Pending(stake, pool.APY, now))
	if reward <= 0 {
		return 0, ErrNoRewards
	}

	err = s.storage.ExecuteClaim(ctx, storages.ClaimExecution{
		UserID:  userID,
		StakeID: stakeID,
		PoolID:  stake.PoolID,
		Reward:  reward,
		Now:     now,
	})
	if err != nil {
		switch {
		case errors.Is(err, storages.ErrNotFound):
			return 0, ErrStakeNotFound
		case errors.Is(err, storages.ErrInactive):
			return 0, ErrStakeInactive
		default:
			return 0, fmt.Errorf("%w: %v", ErrDatastore, err)
		}
	}

	s.notifyLargeOperation(ctx, userID, storages.TransactionTypeClaim, &stake.PoolID, reward)

	s.logger.Infof("Rewards claimed: UserID=%d, Stake=%d, Reward=%.8f", userID, stakeID, reward)
	return reward, nil
}

// ActiveStakes возвращает активные стейки пользователя с накопленными
// наградами на текущий момент. Якоря начисления не сдвигаются.
func (s *FarmService) ActiveStakes(ctx context.Context, userID int64) ([]ActiveStakeView, error) {
	stakes, err := s.storage.GetActiveStakes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	now := time.Now()
	pools := make(map[int64]*storages.Pool)

	views := make([]ActiveStakeView, 0, len(stakes))
	for i := range stakes {
		stake := &stakes[i]
		pool, ok := pools[stake.PoolID]
		if !ok {
			pool, err = s.storage.GetPoolByID(ctx, stake.PoolID)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
			}
			pools[stake.PoolID] = pool
		}

		views = append(views, ActiveStakeView{
			ID:            stake.ID,
			PoolID:        stake.PoolID,
			PoolName:      pool.Name,
			TokenSymbol:   pool.TokenSymbol,
			APY:           pool.APY,
			Amount:        stake.Amount,
			PendingReward: rewards.Pending(stake, pool.APY, now),
			StakedAt:      stake.StakedAt,
		})
	}

	return views, nil
}

func (s *FarmService) getOwnedStake(ctx context.Context, userID, stakeID int64) (*storages.Stake, error) {
	stake, err := s.storage.GetStakeByID(ctx, stakeID)
	if err != nil {
		if errors.Is(err, storages.ErrNotFound) {
			return nil, ErrStakeNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	// Чужой стейк неотличим от несуществующего
	if stake.UserID != userID {
		return nil, ErrStakeNotFound
	}

	return stake, nil
}
