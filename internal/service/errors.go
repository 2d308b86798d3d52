package service

import "errors"

// Закрытый набор ошибок сервисного слоя. HTTP-слой транслирует их в
// коды ответов, сырые ошибки хранилища и внешних провайдеров наружу
// не выходят.
var (
	// Кошелек и стейкинг
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPoolInactive        = errors.New("pool not found or inactive")
	ErrBelowMinimum        = errors.New("amount is below pool minimum stake")
	ErrAboveMaximum        = errors.New("amount exceeds maximum stake per user")
	ErrStakeNotFound       = errors.New("stake not found")
	ErrStakeInactive       = errors.New("stake is not active")
	ErrExcessAmount        = errors.New("insufficient staked amount")
	ErrNoRewards           = errors.New("no rewards to claim")

	// Аутентификация
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrUserNotFound       = errors.New("user not found")

	// Хранилище
	ErrDatastore = errors.New("datastore operation failed")

	// AI-советник
	ErrAdvisorAuth        = errors.New("invalid advisor API key")
	ErrAdvisorRateLimited = errors.New("advisor rate limit exceeded")
	ErrAdvisorUnavailable = errors.New("advisor service is unavailable")

	// Прочее
	ErrChatNotFound = errors.New("chat not found")
	ErrPoolNotFound = errors.New("pool not found")
	ErrNoStrategy   = errors.New("no pools match the requested target APY")
)
