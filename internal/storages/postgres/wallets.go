package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"yield-farm-api/internal/storages"
)

// GetWallet возвращает кошелек пользователя
func (s *PostgresStorage) GetWallet(ctx context.Context, userID int64) (*storages.Wallet, error) {
	query := `
		SELECT id, user_id, balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`

	var wallet storages.Wallet
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, storages.ErrNotFound
	}

	if err != nil {
		s.logger.Errorf("Failed to get wallet: %v", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

// IncrementBalance атомарно увеличивает баланс кошелька
func (s *PostgresStorage) IncrementBalance(ctx context.Context, userID int64, amount float64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance + $1, updated_at = $2
		WHERE user_id = $3
	`, amount, time.Now(), userID)

	if err != nil {
		s.logger.Errorf("Failed to increment balance: %v", err)
		return fmt.Errorf("failed to increment balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return storages.ErrNotFound
	}

	return nil
}

// DecrementBalance атомарно уменьшает баланс кошелька, отказывая при
// недостатке средств
func (s *PostgresStorage) DecrementBalance(ctx context.Context, userID int64, amount float64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance - $1, updated_at = $2
		WHERE user_id = $3 AND balance >= $1
	`, amount, time.Now(), userID)

	if err != nil {
		s.logger.Errorf("Failed to decrement balance: %v", err)
		return fmt.Errorf("failed to decrement balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Отличаем отсутствующий кошелек от недостатка средств
		if _, err := s.GetWallet(ctx, userID); err != nil {
			return err
		}
		return storages.ErrInsufficientFunds
	}

	return nil
}
