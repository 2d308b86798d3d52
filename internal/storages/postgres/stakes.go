package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"yield-farm-api/internal/storages"
)

const stakeColumns = "id, user_id, pool_id, amount, status, staked_at, unstaked_at, last_reward_calculation"

func scanStake(row interface{ Scan(...interface{}) error }) (*storages.Stake, error) {
	var stake storages.Stake
	err := row.Scan(
		&stake.ID,
		&stake.UserID,
		&stake.PoolID,
		&stake.Amount,
		&stake.Status,
		&stake.StakedAt,
		&stake.UnstakedAt,
		&stake.LastRewardCalculation,
	)
	if err != nil {
		return nil, err
	}
	return &stake, nil
}

// GetStakeByID возвращает стейк по ID
func (s *PostgresStorage) GetStakeByID(ctx context.Context, stakeID int64) (*storages.Stake, error) {
	query := fmt.Sprintf("SELECT %s FROM stakes WHERE id = $1", stakeColumns)

	stake, err := scanStake(s.db.QueryRowContext(ctx, query, stakeID))
	if err == sql.ErrNoRows {
		return nil, storages.ErrNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to get stake: %v", err)
		return nil, fmt.Errorf("failed to get stake: %w", err)
	}

	return stake, nil
}

// GetActiveStakes возвращает активные стейки пользователя, новые первыми
func (s *PostgresStorage) GetActiveStakes(ctx context.Context, userID int64) ([]storages.Stake, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM stakes
		WHERE user_id = $1 AND status = $2
		ORDER BY staked_at DESC
	`, stakeColumns)

	return s.listStakes(ctx, query, userID, storages.StakeStatusActive)
}

// GetActiveStakesInPool возвращает активные стейки пользователя в конкретном пуле
func (s *PostgresStorage) GetActiveStakesInPool(ctx context.Context, userID, poolID int64) ([]storages.Stake, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM stakes
		WHERE user_id = $1 AND pool_id = $2 AND status = $3
	`, stakeColumns)

	return s.listStakes(ctx, query, userID, poolID, storages.StakeStatusActive)
}

func (s *PostgresStorage) listStakes(ctx context.Context, query string, args ...interface{}) ([]storages.Stake, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("Failed to query stakes: %v", err)
		return nil, fmt.Errorf("failed to query stakes: %w", err)
	}
	defer rows.Close()

	var stakes []storages.Stake
	for rows.Next() {
		stake, err := scanStake(rows)
		if err != nil {
			s.logger.Errorf("Failed to scan stake: %v", err)
			return nil, fmt.Errorf("failed to scan stake: %w", err)
		}
		stakes = append(stakes, *stake)
	}

	if err = rows.Err(); err != nil {
		s.logger.Errorf("Error iterating stakes: %v", err)
		return nil, fmt.Errorf("error iterating stakes: %w", err)
	}

	return stakes, nil
}

// insertTransactionTx добавляет запись журнала операций внутри открытой транзакции
func insertTransactionTx(ctx context.Context, tx *sql.Tx, exec storages.Transaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (reference, user_id, pool_id, type, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.NewString(), exec.UserID, exec.PoolID, exec.Type, exec.Amount, storages.TransactionStatusCompleted, exec.CreatedAt)
	return err
}

// ExecuteStake выполняет операцию stake атомарно: списание с кошелька,
// создание стейка, увеличение total_staked пула и запись в журнал в одной
// транзакции с блокировкой строки кошелька.
func (s *PostgresStorage) ExecuteStake(ctx context.Context, exec storages.StakeExecution) (*storages.Stake, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Блокируем кошелек и проверяем достаточность средств
	var balance float64
	err = tx.QueryRowContext(ctx, `
		SELECT balance FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`, exec.UserID).Scan(&balance)

	if err == sql.ErrNoRows {
		return nil, storages.ErrNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to lock wallet: %v", err)
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}

	if balance < exec.Amount {
		return nil, storages.ErrInsufficientFunds
	}

	// 2. Списываем средства
	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance - $1, updated_at = $2
		WHERE user_id = $3
	`, exec.Amount, exec.Now, exec.UserID)

	if err != nil {
		s.logger.Errorf("Failed to debit wallet: %v", err)
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}

	// 3. Создаем стейк
	stake := &storages.Stake{
		UserID:                exec.UserID,
		PoolID:                exec.PoolID,
		Amount:                exec.Amount,
		Status:                storages.StakeStatusActive,
		StakedAt:              exec.Now,
		LastRewardCalculation: exec.Now,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO stakes (user_id, pool_id, amount, status, staked_at, last_reward_calculation)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`, exec.UserID, exec.PoolID, exec.Amount, storages.StakeStatusActive, exec.Now).Scan(&stake.ID)

	if err != nil {
		s.logger.Errorf("Failed to create stake: %v", err)
		return nil, fmt.Errorf("failed to create stake: %w", err)
	}

	// 4. Увеличиваем total_staked пула
	_, err = tx.ExecContext(ctx, `
		UPDATE pools
		SET total_staked = total_staked + $1, updated_at = $2
		WHERE id = $3
	`, exec.Amount, exec.Now, exec.PoolID)

	if err != nil {
		s.logger.Errorf("Failed to increment pool stake: %v", err)
		return nil, fmt.Errorf("failed to increment pool stake: %w", err)
	}

	// 5. Запись в журнал операций
	err = insertTransactionTx(ctx, tx, storages.Transaction{
		UserID:    exec.UserID,
		PoolID:    &exec.PoolID,
		Type:      storages.TransactionTypeStake,
		Amount:    exec.Amount,
		CreatedAt: exec.Now,
	})
	if err != nil {
		s.logger.Errorf("Failed to create transaction record: %v", err)
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Stake executed: User=%d, Pool=%d, Amount=%.8f", exec.UserID, exec.PoolID, exec.Amount)
	return stake, nil
}

// ExecuteUnstake выполняет операцию unstake атомарно. Частичный вывод
// уменьшает сумму стейка и сдвигает якорь начисления на exec.Now, чтобы
// выплаченная награда не была начислена повторно.
func (s *PostgresStorage) ExecuteUnstake(ctx context.Context, exec storages.UnstakeExecution) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Блокируем стейк и перепроверяем статус: параллельный unstake
	// того же стейка не должен пройти дважды
	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM stakes
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, exec.StakeID, exec.UserID).Scan(&status)

	if err == sql.ErrNoRows {
		return storages.ErrNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to lock stake: %v", err)
		return fmt.Errorf("failed to lock stake: %w", err)
	}
	if status != storages.StakeStatusActive {
		return storages.ErrInactive
	}

	// 2. Закрываем стейк или уменьшаем сумму
	if exec.Full {
		_, err = tx.ExecContext(ctx, `
			UPDATE stakes
			SET status = $1, unstaked_at = $2, last_reward_calculation = $2
			WHERE id = $3
		`, storages.StakeStatusWithdrawn, exec.Now, exec.StakeID)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE stakes
			SET amount = amount - $1, last_reward_calculation = $2
			WHERE id = $3
		`, exec.Amount, exec.Now, exec.StakeID)
	}
	if err != nil {
		s.logger.Errorf("Failed to update stake: %v", err)
		return fmt.Errorf("failed to update stake: %w", err)
	}

	// 3. Возвращаем сумму и награду в кошелек
	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance + $1, updated_at = $2
		WHERE user_id = $3
	`, exec.Amount+exec.Reward, exec.Now, exec.UserID)

	if err != nil {
		s.logger.Errorf("Failed to credit wallet: %v", err)
		return fmt.Errorf("failed to credit wallet: %w", err)
	}

	// 4. Уменьшаем total_staked пула
	_, err = tx.ExecContext(ctx, `
		UPDATE pools
		SET total_staked = GREATEST(total_staked - $1, 0), updated_at = $2
		WHERE id = $3
	`, exec.Amount, exec.Now, exec.PoolID)

	if err != nil {
		s.logger.Errorf("Failed to decrement pool stake: %v", err)
		return fmt.Errorf("failed to decrement pool stake: %w", err)
	}

	// 5. Фиксируем награду, если она есть
	if exec.Reward > 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO rewards (user_id, stake_id, pool_id, amount, type, claimed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, exec.UserID, exec.StakeID, exec.PoolID, exec.Reward, storages.RewardTypeStaking, exec.Now)

		if err != nil {
			s.logger.Errorf("Failed to create reward record: %v", err)
			return fmt.Errorf("failed to create reward: %w", err)
		}
	}

	// 6. Запись в журнал операций
	err = insertTransactionTx(ctx, tx, storages.Transaction{
		UserID:    exec.UserID,
		PoolID:    &exec.PoolID,
		Type:      storages.TransactionTypeUnstake,
		Amount:    exec.Amount,
		CreatedAt: exec.Now,
	})
	if err != nil {
		s.logger.Errorf("Failed to create transaction record: %v", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Unstake executed: User=%d, Stake=%d, Amount=%.8f, Reward=%.8f, Full=%t",
		exec.UserID, exec.StakeID, exec.Amount, exec.Reward, exec.Full)
	return nil
}

// ExecuteClaim выполняет операцию claim атомарно: начисление награды в кошелек
// и сдвиг якоря начисления в одной транзакции.
func (s *PostgresStorage) ExecuteClaim(ctx context.Context, exec storages.ClaimExecution) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Блокируем стейк и перепроверяем статус
	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM stakes
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, exec.StakeID, exec.UserID).Scan(&status)

	if err == sql.ErrNoRows {
		return storages.ErrNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to lock stake: %v", err)
		return fmt.Errorf("failed to lock stake: %w", err)
	}
	if status != storages.StakeStatusActive {
		return storages.ErrInactive
	}

	// 2. Сдвигаем якорь начисления
	_, err = tx.ExecContext(ctx, `
		UPDATE stakes
		SET last_reward_calculation = $1
		WHERE id = $2
	`, exec.Now, exec.StakeID)

	if err != nil {
		s.logger.Errorf("Failed to advance reward anchor: %v", err)
		return fmt.Errorf("failed to advance reward anchor: %w", err)
	}

	// 3. Начисляем награду в кошелек
	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance + $1, updated_at = $2
		WHERE user_id = $3
	`, exec.Reward, exec.Now, exec.UserID)

	if err != nil {
		s.logger.Errorf("Failed to credit wallet: %v", err)
		return fmt.Errorf("failed to credit wallet: %w", err)
	}

	// 4. Фиксируем награду
	_, err = tx.ExecContext(ctx, `
		INSERT INTO rewards (user_id, stake_id, pool_id, amount, type, claimed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, exec.UserID, exec.StakeID, exec.PoolID, exec.Reward, storages.RewardTypeStaking, exec.Now)

	if err != nil {
		s.logger.Errorf("Failed to create reward record: %v", err)
		return fmt.Errorf("failed to create reward: %w", err)
	}

	// 5. Запись в журнал операций
	err = insertTransactionTx(ctx, tx, storages.Transaction{
		UserID:    exec.UserID,
		PoolID:    &exec.PoolID,
		Type:      storages.TransactionTypeClaim,
		Amount:    exec.Reward,
		CreatedAt: exec.Now,
	})
	if err != nil {
		s.logger.Errorf("Failed to create transaction record: %v", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Claim executed: User=%d, Stake=%d, Reward=%.8f", exec.UserID, exec.StakeID, exec.Reward)
	return nil
}
