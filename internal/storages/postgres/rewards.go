package postgres

import (
	"context"
	"fmt"

	"yield-farm-api/internal/storages"
)

// GetUserRewards возвращает страницу выплаченных наград пользователя,
// новые первыми, вместе с общим количеством записей
func (s *PostgresStorage) GetUserRewards(ctx context.Context, userID int64, limit, offset int) ([]storages.Reward, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rewards WHERE user_id = $1", userID,
	).Scan(&total)
	if err != nil {
		s.logger.Errorf("Failed to count rewards: %v", err)
		return nil, 0, fmt.Errorf("failed to count rewards: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, stake_id, pool_id, amount, type, claimed_at
		FROM rewards
		WHERE user_id = $1
		ORDER BY claimed_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)

	if err != nil {
		s.logger.Errorf("Failed to query rewards: %v", err)
		return nil, 0, fmt.Errorf("failed to query rewards: %w", err)
	}
	defer rows.Close()

	var rewards []storages.Reward
	for rows.Next() {
		var reward storages.Reward
		err := rows.Scan(
			&reward.ID,
			&reward.UserID,
			&reward.StakeID,
			&reward.PoolID,
			&reward.Amount,
			&reward.Type,
			&reward.ClaimedAt,
		)
		if err != nil {
			s.logger.Errorf("Failed to scan reward: %v", err)
			return nil, 0, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}

	if err = rows.Err(); err != nil {
		s.logger.Errorf("Error iterating rewards: %v", err)
		return nil, 0, fmt.Errorf("error iterating rewards: %w", err)
	}

	return rewards, total, nil
}

// GetTotalEarned возвращает суммарный объем выплаченных наград пользователя
func (s *PostgresStorage) GetTotalEarned(ctx context.Context, userID int64) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM rewards WHERE user_id = $1", userID,
	).Scan(&total)

	if err != nil {
		s.logger.Errorf("Failed to sum rewards: %v", err)
		return 0, fmt.Errorf("failed to sum rewards: %w", err)
	}

	return total, nil
}
