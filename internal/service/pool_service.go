package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yield-farm-api/internal/rewards"
	"yield-farm-api/internal/storages"
)

// PoolView пул с необязательной накладкой по стейкам запрашивающего пользователя
type PoolView struct {
	storages.Pool
	UserStaked     float64 `json:"user_staked"`
	PendingRewards float64 `json:"pending_rewards"`
}

// ListPools возвращает активные пулы. Для аутентифицированного пользователя
// (userID > 0) каждый пул дополняется его вкладом и накопленными наградами.
func (s *FarmService) ListPools(ctx context.Context, userID int64) ([]PoolView, error) {
	pools, err := s.storage.ListActivePools(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	views := make([]PoolView, 0, len(pools))
	for _, pool := range pools {
		views = append(views, PoolView{Pool: pool})
	}

	if userID <= 0 {
		return views, nil
	}

	stakes, err := s.storage.GetActiveStakes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	now := time.Now()
	byPool := make(map[int64]*PoolView, len(views))
	for i := range views {
		byPool[views[i].ID] = &views[i]
	}

	for i := range stakes {
		stake := &stakes[i]
		view, ok := byPool[stake.PoolID]
		if !ok {
			continue
		}
		view.UserStaked += stake.Amount
		view.PendingRewards += rewards.Pending(stake, view.APY, now)
	}

	return views, nil
}

// GetPool возвращает пул по ID с накладкой по стейкам пользователя
func (s *FarmService) GetPool(ctx context.Context, poolID, userID int64) (*PoolView, error) {
	pool, err := s.storage.GetPoolByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, storages.ErrNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	view := &PoolView{Pool: *pool}
	if userID <= 0 {
		return view, nil
	}

	stakes, err := s.storage.GetActiveStakesInPool(ctx, userID, poolID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	now := time.Now()
	for i := range stakes {
		view.UserStaked += stakes[i].Amount
		view.PendingRewards += rewards.Pending(&stakes[i], pool.APY, now)
	}

	return view, nil
}

// CreatePool создает пул вручную (админ-операция)
func (s *FarmService) CreatePool(ctx context.Context, pool *storages.Pool) error {
	if pool.APY < 0 || pool.MinStakeAmount < 0 || pool.MaxStakePerUser < 0 {
		return ErrInvalidAmount
	}

	if err := s.storage.CreatePool(ctx, pool); err != nil {
		return fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	s.logger.Infof("Pool created manually: ID=%d, Name=%s", pool.ID, pool.Name)
	return nil
}

// UpdatePool обновляет пул вручную (админ-операция)
func (s *FarmService) UpdatePool(ctx context.Context, pool *storages.Pool) error {
	if pool.APY < 0 || pool.MinStakeAmount < 0 || pool.MaxStakePerUser < 0 {
		return ErrInvalidAmount
	}

	if err := s.storage.UpdatePool(ctx, pool); err != nil {
		if errors.Is(err, storages.ErrNotFound) {
			return ErrPoolNotFound
		}
		return fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	s.logger.Infof("Pool updated: ID=%d, Name=%s", pool.ID, pool.Name)
	return nil
}
