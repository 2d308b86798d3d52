package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"yield-farm-api/internal/storages"
)

// Register регистрирует нового пользователя и создает ему демо-кошелек
// с начальным балансом
func (s *FarmService) Register(ctx context.Context, username, email, password string) (*storages.User, error) {
	// Проверяем, не существует ли уже пользователь
	if existing, _ := s.storage.GetUserByUsername(ctx, username); existing != nil {
		return nil, ErrUserExists
	}
	if existing, _ := s.storage.GetUserByEmail(ctx, email); existing != nil {
		return nil, ErrUserExists
	}

	// Хешируем пароль
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Errorf("Failed to hash password: %v", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &storages.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	// Пользователь и кошелек создаются в одной транзакции хранилища
	if err := s.storage.CreateUserWithWallet(ctx, user, s.initialBalance); err != nil {
		if errors.Is(err, storages.ErrDuplicate) {
			return nil, ErrUserExists
		}
		s.logger.Errorf("Failed to create user: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	s.logger.Infof("User registered successfully: %s", username)
	return user, nil
}

// Login аутентифицирует пользователя по имени и паролю
func (s *FarmService) Login(ctx context.Context, username, password string) (*storages.User, error) {
	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warnf("Failed authentication attempt for user: %s", username)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	s.logger.Infof("User authenticated successfully: %s", username)
	return user, nil
}

// Profile возвращает пользователя вместе с балансом его кошелька
func (s *FarmService) Profile(ctx context.Context, userID int64) (*storages.User, *storages.Wallet, error) {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storages.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	wallet, err := s.storage.GetWallet(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	return user, wallet, nil
}
