package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"yield-farm-api/internal/storages"
)

// CreateTransaction добавляет запись в журнал операций
func (s *PostgresStorage) CreateTransaction(ctx context.Context, tx *storages.Transaction) error {
	if tx.Reference == "" {
		tx.Reference = uuid.NewString()
	}
	if tx.Status == "" {
		tx.Status = storages.TransactionStatusCompleted
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO transactions (reference, user_id, pool_id, type, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, tx.Reference, tx.UserID, tx.PoolID, tx.Type, tx.Amount, tx.Status, tx.CreatedAt).Scan(&tx.ID)

	if err != nil {
		s.logger.Errorf("Failed to create transaction: %v", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetUserTransactions возвращает страницу транзакций пользователя, новые первыми,
// вместе с общим количеством записей
func (s *PostgresStorage) GetUserTransactions(ctx context.Context, userID int64, limit, offset int) ([]storages.Transaction, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE user_id = $1", userID,
	).Scan(&total)
	if err != nil {
		s.logger.Errorf("Failed to count transactions: %v", err)
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reference, user_id, pool_id, type, amount, status, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)

	if err != nil {
		s.logger.Errorf("Failed to query transactions: %v", err)
		return nil, 0, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []storages.Transaction
	for rows.Next() {
		var tx storages.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.Reference,
			&tx.UserID,
			&tx.PoolID,
			&tx.Type,
			&tx.Amount,
			&tx.Status,
			&tx.CreatedAt,
		)
		if err != nil {
			s.logger.Errorf("Failed to scan transaction: %v", err)
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err = rows.Err(); err != nil {
		s.logger.Errorf("Error iterating transactions: %v", err)
		return nil, 0, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, total, nil
}
