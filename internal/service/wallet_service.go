package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yield-farm-api/internal/rewards"
	"yield-farm-api/internal/storages"
)

// Balance возвращает агрегированное состояние средств пользователя:
// доступный баланс, сумму активных стейков и накопленные награды
func (s *FarmService) Balance(ctx context.Context, userID int64) (*storages.WalletOverview, error) {
	wallet, err := s.storage.GetWallet(ctx, userID)
	if err != nil {
		if errors.Is(err, storages.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	stakes, err := s.storage.GetActiveStakes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	staked, pending, err := s.aggregateStakes(ctx, stakes, time.Now())
	if err != nil {
		return nil, err
	}

	return &storages.WalletOverview{
		Balance:        wallet.Balance,
		StakedBalance:  staked,
		PendingRewards: pending,
	}, nil
}

// aggregateStakes суммирует объем и накопленные награды активных стейков.
// APY пулов кешируется в рамках вызова, чтобы не перечитывать пул на каждый стейк.
func (s *FarmService) aggregateStakes(ctx context.Context, stakes []storages.Stake, now time.Time) (staked, pending float64, err error) {
	apyByPool := make(map[int64]float64)

	for i := range stakes {
		stake := &stakes[i]
		apy, ok := apyByPool[stake.PoolID]
		if !ok {
			pool, err := s.storage.GetPoolByID(ctx, stake.PoolID)
			if err != nil {
				return 0, 0, fmt.Errorf("%w: %v", ErrDatastore, err)
			}
			apy = pool.APY
			apyByPool[stake.PoolID] = apy
		}

		staked += stake.Amount
		pending += rewards.Pending(stake, apy, now)
	}

	return staked, pending, nil
}

// Deposit пополняет демо-кошелек пользователя
func (s *FarmService) Deposit(ctx context.Context, userID int64, amount float64) (*storages.WalletOverview, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if err := s.storage.IncrementBalance(ctx, userID, amount); err != nil {
		if errors.Is(err, storages.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	s.recordTransaction(ctx, userID, nil, storages.TransactionTypeDeposit, amount)
	s.notifyLargeOperation(ctx, userID, storages.TransactionTypeDeposit, nil, amount)

	s.logger.Infof("Deposit completed: UserID=%d, Amount=%.2f", userID, amount)
	return s.Balance(ctx, userID)
}

// Withdraw выводит средства с демо-кошелька пользователя
func (s *FarmService) Withdraw(ctx context.Context, userID int64, amount float64) (*storages.WalletOverview, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if err := s.storage.DecrementBalance(ctx, userID, amount); err != nil {
		switch {
		case errors.Is(err, storages.ErrInsufficientFunds):
			return nil, ErrInsufficientBalance
		case errors.Is(err, storages.ErrNotFound):
			return nil, ErrUserNotFound
		default:
			return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
		}
	}

	s.recordTransaction(ctx, userID, nil, storages.TransactionTypeWithdraw, amount)
	s.notifyLargeOperation(ctx, userID, storages.TransactionTypeWithdraw, nil, amount)

	s.logger.Infof("Withdrawal completed: UserID=%d, Amount=%.2f", userID, amount)
	return s.Balance(ctx, userID)
}

// Transactions возвращает страницу журнала операций пользователя, новые первыми
func (s *FarmService) Transactions(ctx context.Context, userID int64, limit, offset int) ([]storages.Transaction, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	transactions, total, err := s.storage.GetUserTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	return transactions, total, nil
}

// recordTransaction добавляет запись журнала; сбой записи не отменяет операцию
func (s *FarmService) recordTransaction(ctx context.Context, userID int64, poolID *int64, txType string, amount float64) {
	tx := &storages.Transaction{
		UserID: userID,
		PoolID: poolID,
		Type:   txType,
		Amount: amount,
		Status: storages.TransactionStatusCompleted,
	}
	if err := s.storage.CreateTransaction(ctx, tx); err != nil {
		s.logger.Warnf("Failed to create transaction record: %v", err)
	}
}

// notifyLargeOperation отправляет уведомление в Kafka, если сумма большая
func (s *FarmService) notifyLargeOperation(ctx context.Context, userID int64, opType string, poolID *int64, amount float64) {
	if s.kafkaProducer == nil {
		return
	}
	if err := s.kafkaProducer.SendLargeOperationNotification(ctx, userID, opType, poolID, amount); err != nil {
		s.logger.Warnf("Failed to send Kafka notification: %v", err)
	}
}
