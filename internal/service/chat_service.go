package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"yield-farm-api/internal/storages"
	"yield-farm-api/internal/strategy"
	"yield-farm-api/pkg"
)

// ChatSession сессия чата с советником в развернутом виде
type ChatSession struct {
	ID        int64             `json:"id"`
	Title     string            `json:"title"`
	Messages  []ChatMessage     `json:"messages"`
	Profile   *strategy.Profile `json:"profile,omitempty"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
}

// ListChatSessions возвращает сессии чата пользователя, недавние первыми
func (s *FarmService) ListChatSessions(ctx context.Context, userID int64) ([]ChatSession, error) {
	chats, err := s.storage.ListChats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	sessions := make([]ChatSession, 0, len(chats))
	for i := range chats {
		session, err := s.toSession(&chats[i])
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	return sessions, nil
}

// GetChatSession возвращает сессию чата, принадлежащую пользователю
func (s *FarmService) GetChatSession(ctx context.Context, chatID, userID int64) (*ChatSession, error) {
	chat, err := s.storage.GetChat(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, storages.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	return s.toSession(chat)
}

// CreateChatSession сохраняет новую сессию чата
func (s *FarmService) CreateChatSession(ctx context.Context, userID int64, title string, messages []ChatMessage, profile *strategy.Profile) (*ChatSession, error) {
	chat := &storages.AIChat{
		UserID: userID,
		Title:  pkg.TruncateString(title, 200),
	}

	var err error
	if chat.Messages, err = json.Marshal(messages); err != nil {
		return nil, fmt.Errorf("failed to marshal chat messages: %w", err)
	}
	if profile != nil {
		if chat.Profile, err = json.Marshal(profile); err != nil {
			return nil, fmt.Errorf("failed to marshal chat profile: %w", err)
		}
	}

	if err := s.storage.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	return s.toSession(chat)
}

// UpdateChatSession обновляет заголовок и содержимое сессии чата
func (s *FarmService) UpdateChatSession(ctx context.Context, chatID, userID int64, title string, messages []ChatMessage, profile *strategy.Profile) (*ChatSession, error) {
	chat := &storages.AIChat{
		ID:     chatID,
		UserID: userID,
		Title:  pkg.TruncateString(title, 200),
	}

	var err error
	if chat.Messages, err = json.Marshal(messages); err != nil {
		return nil, fmt.Errorf("failed to marshal chat messages: %w", err)
	}
	if profile != nil {
		if chat.Profile, err = json.Marshal(profile); err != nil {
			return nil, fmt.Errorf("failed to marshal chat profile: %w", err)
		}
	}

	if err := s.storage.UpdateChat(ctx, chat); err != nil {
		if errors.Is(err, storages.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	return s.GetChatSession(ctx, chatID, userID)
}

// DeleteChatSession удаляет сессию чата пользователя
func (s *FarmService) DeleteChatSession(ctx context.Context, chatID, userID int64) error {
	if err := s.storage.DeleteChat(ctx, chatID, userID); err != nil {
		if errors.Is(err, storages.ErrNotFound) {
			return ErrChatNotFound
		}
		return fmt.Errorf("%w: %v", ErrDatastore, err)
	}
	return nil
}

func (s *FarmService) toSession(chat *storages.AIChat) (*ChatSession, error) {
	session := &ChatSession{
		ID:        chat.ID,
		Title:     chat.Title,
		CreatedAt: chat.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: chat.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if len(chat.Messages) > 0 {
		if err := json.Unmarshal(chat.Messages, &session.Messages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat messages: %w", err)
		}
	}
	if len(chat.Profile) > 0 {
		session.Profile = &strategy.Profile{}
		if err := json.Unmarshal(chat.Profile, session.Profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat profile: %w", err)
		}
	}

	return session, nil
}
