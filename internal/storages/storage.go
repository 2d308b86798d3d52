package storages

import (
	"context"
	"errors"
	"time"
)

// Ошибки уровня хранилища. Сервисный слой транслирует их в свои типизированные
// ошибки и не пропускает наружу.
var (
	ErrNotFound          = errors.New("storage: not found")
	ErrInsufficientFunds = errors.New("storage: insufficient funds")
	ErrDuplicate         = errors.New("storage: duplicate")
	ErrInactive          = errors.New("storage: row is not active")
)

// StakeExecution параметры атомарной операции stake
type StakeExecution struct {
	UserID int64
	PoolID int64
	Amount float64
	Now    time.Time
}

// UnstakeExecution параметры атомарной операции unstake
type UnstakeExecution struct {
	UserID  int64
	StakeID int64
	PoolID  int64
	Amount  float64
	Reward  float64
	Full    bool
	Now     time.Time
}

// ClaimExecution параметры атомарной операции claim
type ClaimExecution struct {
	UserID  int64
	StakeID int64
	PoolID  int64
	Reward  float64
	Now     time.Time
}

// Storage определяет интерфейс для работы с хранилищем данных
type Storage interface {
	// User operations
	CreateUserWithWallet(ctx context.Context, user *User, initialBalance float64) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)

	// Wallet operations
	GetWallet(ctx context.Context, userID int64) (*Wallet, error)
	IncrementBalance(ctx context.Context, userID int64, amount float64) error
	DecrementBalance(ctx context.Context, userID int64, amount float64) error

	// Pool operations
	CreatePool(ctx context.Context, pool *Pool) error
	UpdatePool(ctx context.Context, pool *Pool) error
	GetPoolByID(ctx context.Context, poolID int64) (*Pool, error)
	GetPoolByExternalID(ctx context.Context, externalID string) (*Pool, error)
	GetPoolByName(ctx context.Context, name string) (*Pool, error)
	ListActivePools(ctx context.Context) ([]Pool, error)
	ListPoolsByCreation(ctx context.Context) ([]Pool, error)
	DeletePools(ctx context.Context, poolIDs []int64) error
	IncrementPoolStake(ctx context.Context, poolID int64, amount float64) error
	DecrementPoolStake(ctx context.Context, poolID int64, amount float64) error

	// Stake operations
	GetStakeByID(ctx context.Context, stakeID int64) (*Stake, error)
	GetActiveStakes(ctx context.Context, userID int64) ([]Stake, error)
	GetActiveStakesInPool(ctx context.Context, userID, poolID int64) ([]Stake, error)

	// Atomic multi-row mutations (single store transaction each)
	ExecuteStake(ctx context.Context, exec StakeExecution) (*Stake, error)
	ExecuteUnstake(ctx context.Context, exec UnstakeExecution) error
	ExecuteClaim(ctx context.Context, exec ClaimExecution) error

	// Transaction log
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetUserTransactions(ctx context.Context, userID int64, limit, offset int) ([]Transaction, int, error)

	// Rewards
	GetUserRewards(ctx context.Context, userID int64, limit, offset int) ([]Reward, int, error)
	GetTotalEarned(ctx context.Context, userID int64) (float64, error)

	// AI chat history
	ListChats(ctx context.Context, userID int64) ([]AIChat, error)
	GetChat(ctx context.Context, chatID, userID int64) (*AIChat, error)
	CreateChat(ctx context.Context, chat *AIChat) error
	UpdateChat(ctx context.Context, chat *AIChat) error
	DeleteChat(ctx context.Context, chatID, userID int64) error

	// Health check
	Ping(ctx context.Context) error
	Close() error
}
