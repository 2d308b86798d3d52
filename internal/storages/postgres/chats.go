package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"yield-farm-api/internal/storages"
)

// ListChats возвращает сессии чата пользователя, недавно обновленные первыми
func (s *PostgresStorage) ListChats(ctx context.Context, userID int64) ([]storages.AIChat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, messages, profile, created_at, updated_at
		FROM ai_chats
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)

	if err != nil {
		s.logger.Errorf("Failed to query chats: %v", err)
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var chats []storages.AIChat
	for rows.Next() {
		var chat storages.AIChat
		err := rows.Scan(
			&chat.ID,
			&chat.UserID,
			&chat.Title,
			&chat.Messages,
			&chat.Profile,
			&chat.CreatedAt,
			&chat.UpdatedAt,
		)
		if err != nil {
			s.logger.Errorf("Failed to scan chat: %v", err)
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, chat)
	}

	if err = rows.Err(); err != nil {
		s.logger.Errorf("Error iterating chats: %v", err)
		return nil, fmt.Errorf("error iterating chats: %w", err)
	}

	return chats, nil
}

// GetChat возвращает сессию чата, принадлежащую пользователю
func (s *PostgresStorage) GetChat(ctx context.Context, chatID, userID int64) (*storages.AIChat, error) {
	var chat storages.AIChat
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, messages, profile, created_at, updated_at
		FROM ai_chats
		WHERE id = $1 AND user_id = $2
	`, chatID, userID).Scan(
		&chat.ID,
		&chat.UserID,
		&chat.Title,
		&chat.Messages,
		&chat.Profile,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, storages.ErrNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to get chat: %v", err)
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	return &chat, nil
}

// CreateChat создает новую сессию чата
func (s *PostgresStorage) CreateChat(ctx context.Context, chat *storages.AIChat) error {
	now := time.Now()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ai_chats (user_id, title, messages, profile, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`, chat.UserID, chat.Title, chat.Messages, chat.Profile, now).Scan(&chat.ID)

	if err != nil {
		s.logger.Errorf("Failed to create chat: %v", err)
		return fmt.Errorf("failed to create chat: %w", err)
	}

	chat.CreatedAt = now
	chat.UpdatedAt = now
	return nil
}

// UpdateChat обновляет заголовок и содержимое сессии чата
func (s *PostgresStorage) UpdateChat(ctx context.Context, chat *storages.AIChat) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE ai_chats
		SET title = $1, messages = $2, profile = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`, chat.Title, chat.Messages, chat.Profile, time.Now(), chat.ID, chat.UserID)

	if err != nil {
		s.logger.Errorf("Failed to update chat: %v", err)
		return fmt.Errorf("failed to update chat: %w", err)
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

// DeleteChat удаляет сессию чата, принадлежащую пользователю
func (s *PostgresStorage) DeleteChat(ctx context.Context, chatID, userID int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM ai_chats WHERE id = $1 AND user_id = $2", chatID, userID)

	if err != nil {
		s.logger.Errorf("Failed to delete chat: %v", err)
		return fmt.Errorf("failed to delete chat: %w", err)
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
