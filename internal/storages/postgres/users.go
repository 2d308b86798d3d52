package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"yield-farm-api/internal/storages"
)

const userColumns = "id, username, email, password_hash, is_admin, is_active, created_at, updated_at"

// uniqueViolation код ошибки PostgreSQL для нарушения уникальности
const uniqueViolation = "23505"

// CreateUserWithWallet создает пользователя и его кошелек с начальным балансом
// в одной транзакции
func (s *PostgresStorage) CreateUserWithWallet(ctx context.Context, user *storages.User, initialBalance float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, is_admin, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $5)
		RETURNING id
	`, user.Username, user.Email, user.PasswordHash, user.IsAdmin, now).Scan(&user.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return storages.ErrDuplicate
		}
		s.logger.Errorf("Failed to create user: %v", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`, user.ID, initialBalance, now)

	if err != nil {
		s.logger.Errorf("Failed to create wallet: %v", err)
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	user.IsActive = true
	user.CreatedAt = now
	user.UpdatedAt = now

	s.logger.Infof("Created user: ID=%d, Username=%s", user.ID, user.Username)
	return nil
}

// GetUserByUsername возвращает пользователя по имени
func (s *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*storages.User, error) {
	return s.getUser(ctx, "username = $1", username)
}

// GetUserByEmail возвращает пользователя по email
func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*storages.User, error) {
	return s.getUser(ctx, "email = $1", email)
}

// GetUserByID возвращает пользователя по ID
func (s *PostgresStorage) GetUserByID(ctx context.Context, userID int64) (*storages.User, error) {
	return s.getUser(ctx, "id = $1", userID)
}

func (s *PostgresStorage) getUser(ctx context.Context, where string, arg interface{}) (*storages.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE %s", userColumns, where)

	var user storages.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, storages.ErrNotFound
	}

	if err != nil {
		s.logger.Errorf("Failed to get user: %v", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
