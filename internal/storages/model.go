package storages

import "time"

// User представляет пользователя системы
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Wallet представляет демо-кошелек пользователя (один на пользователя)
type Wallet struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Balance   float64   `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Pool представляет пул доходности, синхронизируемый из внешнего фида
type Pool struct {
	ID              int64     `db:"id"`
	Name            string    `db:"name"`
	Description     string    `db:"description"`
	TokenSymbol     string    `db:"token_symbol"`
	APY             float64   `db:"apy"`
	TotalStaked     float64   `db:"total_staked"`
	MinStakeAmount  float64   `db:"min_stake_amount"`
	MaxStakePerUser float64   `db:"max_stake_per_user"` // 0 означает отсутствие лимита
	IsActive        bool      `db:"is_active"`
	Chain           string    `db:"chain"`
	Project         string    `db:"project"`
	ExternalPoolID  string    `db:"external_pool_id"`
	TVLUsd          float64   `db:"tvl_usd"`
	URL             string    `db:"url"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// Stake представляет стейк-позицию пользователя в пуле
type Stake struct {
	ID                    int64      `db:"id"`
	UserID                int64      `db:"user_id"`
	PoolID                int64      `db:"pool_id"`
	Amount                float64    `db:"amount"`
	Status                string     `db:"status"` // active, withdrawn
	StakedAt              time.Time  `db:"staked_at"`
	UnstakedAt            *time.Time `db:"unstaked_at"`
	LastRewardCalculation time.Time  `db:"last_reward_calculation"`
}

// Transaction представляет запись журнала операций (только добавление)
type Transaction struct {
	ID        int64     `db:"id"`
	Reference string    `db:"reference"`
	UserID    int64     `db:"user_id"`
	PoolID    *int64    `db:"pool_id"`
	Type      string    `db:"type"` // deposit, withdraw, stake, unstake, claim
	Amount    float64   `db:"amount"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// Reward представляет выплаченную награду (только добавление)
type Reward struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	StakeID   int64     `db:"stake_id"`
	PoolID    int64     `db:"pool_id"`
	Amount    float64   `db:"amount"`
	Type      string    `db:"type"`
	ClaimedAt time.Time `db:"claimed_at"`
}

// AIChat представляет сохраненную сессию чата с AI-советником
type AIChat struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Title     string    `db:"title"`
	Messages  []byte    `db:"messages"` // JSONB
	Profile   []byte    `db:"profile"`  // JSONB, может быть NULL
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// StakeStatus определяет статусы стейков
const (
	StakeStatusActive    = "active"
	StakeStatusWithdrawn = "withdrawn"
)

// TransactionType определяет типы транзакций
const (
	TransactionTypeDeposit  = "deposit"
	TransactionTypeWithdraw = "withdraw"
	TransactionTypeStake    = "stake"
	TransactionTypeUnstake  = "unstake"
	TransactionTypeClaim    = "claim"
)

// TransactionStatus определяет статусы транзакций
const (
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// RewardTypeStaking тип награды за стейкинг
const RewardTypeStaking = "staking"

// StakeResult результат операции unstake
type StakeResult struct {
	UnstakedAmount float64 `json:"unstaked_amount"`
	RewardsClaimed float64 `json:"rewards_claimed"`
}

// WalletOverview агрегированное состояние средств пользователя
type WalletOverview struct {
	Balance        float64 `json:"balance"`
	StakedBalance  float64 `json:"staked_balance"`
	PendingRewards float64 `json:"pending_rewards"`
}
