package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"yield-farm-api/internal/service"
	"yield-farm-api/internal/storages"
)

// MockStorage - мок для Storage
type MockStorage struct {
	users        map[int64]*storages.User
	wallets      map[int64]*storages.Wallet
	pools        map[int64]*storages.Pool
	stakes       map[int64]*storages.Stake
	transactions []storages.Transaction
	rewards      []storages.Reward
	chats        map[int64]*storages.AIChat
	nextID       int64
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		users:   make(map[int64]*storages.User),
		wallets: make(map[int64]*storages.Wallet),
		pools:   make(map[int64]*storages.Pool),
		stakes:  make(map[int64]*storages.Stake),
		chats:   make(map[int64]*storages.AIChat),
	}
}

func (m *MockStorage) nextSeq() int64 {
	m.nextID++
	return m.nextID
}

func (m *MockStorage) CreateUserWithWallet(ctx context.Context, user *storages.User, initialBalance float64) error {
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return storages.ErrDuplicate
		}
	}
	user.ID = m.nextSeq()
	user.IsActive = true
	m.users[user.ID] = user
	m.wallets[user.ID] = &storages.Wallet{
		ID:      m.nextSeq(),
		UserID:  user.ID,
		Balance: initialBalance,
	}
	return nil
}

func (m *MockStorage) GetUserByUsername(ctx context.Context, username string) (*storages.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, storages.ErrNotFound
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (*storages.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, storages.ErrNotFound
}

func (m *MockStorage) GetUserByID(ctx context.Context, userID int64) (*storages.User, error) {
	if u, ok := m.users[userID]; ok {
		return u, nil
	}
	return nil, storages.ErrNotFound
}

func (m *MockStorage) GetWallet(ctx context.Context, userID int64) (*storages.Wallet, error) {
	if w, ok := m.wallets[userID]; ok {
		copy := *w
		return &copy, nil
	}
	return nil, storages.ErrNotFound
}

func (m *MockStorage) IncrementBalance(ctx context.Context, userID int64, amount float64) error {
	w, ok := m.wallets[userID]
	if !ok {
		return storages.ErrNotFound
	}
	w.Balance += amount
	return nil
}

func (m *MockStorage) DecrementBalance(ctx context.Context, userID int64, amount float64) error {
	w, ok := m.wallets[userID]
	if !ok {
		return storages.ErrNotFound
	}
	if w.Balance < amount {
		return storages.ErrInsufficientFunds
	}
	w.Balance -= amount
	return nil
}

func (m *MockStorage) CreatePool(ctx context.Context, pool *storages.Pool) error {
	pool.ID = m.nextSeq()
	m.pools[pool.ID] = pool
	return nil
}

func (m *MockStorage) UpdatePool(ctx context.Context, pool *storages.Pool) error {
	if _, ok := m.pools[pool.ID]; !ok {
		return storages.ErrNotFound
	}
	m.pools[pool.ID] = pool
	return nil
}

func (m *MockStorage) GetPoolByID(ctx context.Context, poolID int64) (*storages.Pool, error) {
	if p, ok := m.pools[poolID]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, storages.ErrNotFound
}

func (m *MockStorage) GetPoolByExternalID(ctx context.Context, externalID string) (*storages.Pool, error) {
	for _, p := range m.pools {
		if externalID != "" && p.ExternalPoolID == externalID {
			return p, nil
		}
	}
	return nil, storages.ErrNotFound
}

func (m *MockStorage) GetPoolByName(ctx context.Context, name string) (*storages.Pool, error) {
	for _, p := range m.pools {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, storages.ErrNotFound
}

func (m *MockStorage) ListActivePools(ctx context.Context) ([]storages.Pool, error) {
	var pools []storages.Pool
	for _, p := range m.pools {
		if p.IsActive {
			pools = append(pools, *p)
		}
	}
	return pools, nil
}

func (m *MockStorage) ListPoolsByCreation(ctx context.Context) ([]storages.Pool, error) {
	var pools []storages.Pool
	for _, p := range m.pools {
		pools = append(pools, *p)
	}
	return pools, nil
}

func (m *MockStorage) DeletePools(ctx context.Context, poolIDs []int64) error {
	for _, id := range poolIDs {
		delete(m.pools, id)
	}
	return nil
}

func (m *MockStorage) IncrementPoolStake(ctx context.Context, poolID int64, amount float64) error {
	if p, ok := m.pools[poolID]; ok {
		p.TotalStaked += amount
	}
	return nil
}

func (m *MockStorage) DecrementPoolStake(ctx context.Context, poolID int64, amount float64) error {
	if p, ok := m.pools[poolID]; ok {
		p.TotalStaked -= amount
		if p.TotalStaked < 0 {
			p.TotalStaked = 0
		}
	}
	return nil
}

func (m *MockStorage) GetStakeByID(ctx context.Context, stakeID int64) (*storages.Stake, error) {
	if s, ok := m.stakes[stakeID]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, storages.ErrNotFound
}

func (m *MockStorage) GetActiveStakes(ctx context.Context, userID int64) ([]storages.Stake, error) {
	var stakes []storages.Stake
	for _, s := range m.stakes {
		if s.UserID == userID && s.Status == storages.StakeStatusActive {
			stakes = append(stakes, *s)
		}
	}
	return stakes, nil
}

func (m *MockStorage) GetActiveStakesInPool(ctx context.Context, userID, poolID int64) ([]storages.Stake, error) {
	var stakes []storages.Stake
	for _, s := range m.stakes {
		if s.UserID == userID && s.PoolID == poolID && s.Status == storages.StakeStatusActive {
			stakes = append(stakes, *s)
		}
	}
	return stakes, nil
}

func (m *MockStorage) ExecuteStake(ctx context.Context, exec storages.StakeExecution) (*storages.Stake, error) {
	w, ok := m.wallets[exec.UserID]
	if !ok {
		return nil, storages.ErrNotFound
	}
	if w.Balance < exec.Amount {
		return nil, storages.ErrInsufficientFunds
	}
	w.Balance -= exec.Amount

	stake := &storages.Stake{
		ID:                    m.nextSeq(),
		UserID:                exec.UserID,
		PoolID:                exec.PoolID,
		Amount:                exec.Amount,
		Status:                storages.StakeStatusActive,
		StakedAt:              exec.Now,
		LastRewardCalculation: exec.Now,
	}
	m.stakes[stake.ID] = stake

	if p, ok := m.pools[exec.PoolID]; ok {
		p.TotalStaked += exec.Amount
	}

	m.transactions = append(m.transactions, storages.Transaction{
		UserID:    exec.UserID,
		PoolID:    &exec.PoolID,
		Type:      storages.TransactionTypeStake,
		Amount:    exec.Amount,
		Status:    storages.TransactionStatusCompleted,
		CreatedAt: exec.Now,
	})

	result := *stake
	return &result, nil
}

func (m *MockStorage) ExecuteUnstake(ctx context.Context, exec storages.UnstakeExecution) error {
	stake, ok := m.stakes[exec.StakeID]
	if !ok || stake.UserID != exec.UserID {
		return storages.ErrNotFound
	}
	if stake.Status != storages.StakeStatusActive {
		return storages.ErrInactive
	}

	if exec.Full {
		stake.Status = storages.StakeStatusWithdrawn
		unstakedAt := exec.Now
		stake.UnstakedAt = &unstakedAt
	} else {
		stake.Amount -= exec.Amount
	}
	stake.LastRewardCalculation = exec.Now

	m.wallets[exec.UserID].Balance += exec.Amount + exec.Reward

	if p, ok := m.pools[exec.PoolID]; ok {
		p.TotalStaked -= exec.Amount
		if p.TotalStaked < 0 {
			p.TotalStaked = 0
		}
	}

	if exec.Reward > 0 {
		m.rewards = append(m.rewards, storages.Reward{
			UserID:    exec.UserID,
			StakeID:   exec.StakeID,
			PoolID:    exec.PoolID,
			Amount:    exec.Reward,
			Type:      storages.RewardTypeStaking,
			ClaimedAt: exec.Now,
		})
	}

	m.transactions = append(m.transactions, storages.Transaction{
		UserID:    exec.UserID,
		PoolID:    &exec.PoolID,
		Type:      storages.TransactionTypeUnstake,
		Amount:    exec.Amount,
		Status:    storages.TransactionStatusCompleted,
		CreatedAt: exec.Now,
	})

	return nil
}

func (m *MockStorage) ExecuteClaim(ctx context.Context, exec storages.ClaimExecution) error {
	stake, ok := m.stakes[exec.StakeID]
	if !ok || stake.UserID != exec.UserID {
		return storages.ErrNotFound
	}
	if stake.Status != storages.StakeStatusActive {
		return storages.ErrInactive
	}

	stake.LastRewardCalculation = exec.Now
	m.wallets[exec.UserID].Balance += exec.Reward

	m.rewards = append(m.rewards, storages.Reward{
		UserID:    exec.UserID,
		StakeID:   exec.StakeID,
		PoolID:    exec.PoolID,
		Amount:    exec.Reward,
		Type:      storages.RewardTypeStaking,
		ClaimedAt: exec.Now,
	})

	m.transactions = append(m.transactions, storages.Transaction{
		UserID:    exec.UserID,
		PoolID:    &exec.PoolID,
		Type:      storages.TransactionTypeClaim,
		Amount:    exec.Reward,
		Status:    storages.TransactionStatusCompleted,
		CreatedAt: exec.Now,
	})

	return nil
}

func (m *MockStorage) CreateTransaction(ctx context.Context, tx *storages.Transaction) error {
	tx.ID = m.nextSeq()
	m.transactions = append(m.transactions, *tx)
	return nil
}

func (m *MockStorage) GetUserTransactions(ctx context.Context, userID int64, limit, offset int) ([]storages.Transaction, int, error) {
	var result []storages.Transaction
	for _, tx := range m.transactions {
		if tx.UserID == userID {
			result = append(result, tx)
		}
	}
	return result, len(result), nil
}

func (m *MockStorage) GetUserRewards(ctx context.Context, userID int64, limit, offset int) ([]storages.Reward, int, error) {
	var result []storages.Reward
	for _, r := range m.rewards {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	return result, len(result), nil
}

func (m *MockStorage) GetTotalEarned(ctx context.Context, userID int64) (float64, error) {
	var total float64
	for _, r := range m.rewards {
		if r.UserID == userID {
			total += r.Amount
		}
	}
	return total, nil
}

func (m *MockStorage) ListChats(ctx context.Context, userID int64) ([]storages.AIChat, error) {
	var chats []storages.AIChat
	for _, c := range m.chats {
		if c.UserID == userID {
			chats = append(chats, *c)
		}
	}
	return chats, nil
}

func (m *MockStorage) GetChat(ctx context.Context, chatID, userID int64) (*storages.AIChat, error) {
	if c, ok := m.chats[chatID]; ok && c.UserID == userID {
		copy := *c
		return &copy, nil
	}
	return nil, storages.ErrNotFound
}

func (m *MockStorage) CreateChat(ctx context.Context, chat *storages.AIChat) error {
	chat.ID = m.nextSeq()
	m.chats[chat.ID] = chat
	return nil
}

func (m *MockStorage) UpdateChat(ctx context.Context, chat *storages.AIChat) error {
	if existing, ok := m.chats[chat.ID]; ok && existing.UserID == chat.UserID {
		m.chats[chat.ID] = chat
		return nil
	}
	return storages.ErrNotFound
}

func (m *MockStorage) DeleteChat(ctx context.Context, chatID, userID int64) error {
	if c, ok := m.chats[chatID]; ok && c.UserID == userID {
		delete(m.chats, chatID)
		return nil
	}
	return storages.ErrNotFound
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MockStorage) Close() error {
	return nil
}

// Test helpers

func newTestService(storage *MockStorage, initialBalance float64) *service.FarmService {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return service.NewFarmService(storage, nil, nil, nil, initialBalance, logger)
}

func createTestPool(storage *MockStorage, apy, minStake, maxPerUser float64) *storages.Pool {
	pool := &storages.Pool{
		Name:            "test pool",
		TokenSymbol:     "TST",
		APY:             apy,
		MinStakeAmount:  minStake,
		MaxStakePerUser: maxPerUser,
		IsActive:        true,
	}
	storage.CreatePool(context.Background(), pool)
	return pool
}

func registerTestUser(t *testing.T, svc *service.FarmService, username string) *storages.User {
	t.Helper()
	user, err := svc.Register(context.Background(), username, username+"@example.com", "password123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return user
}

func approx(a, b, eps float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

// Tests

func TestRegister(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, 10000)
	ctx := context.Background()

	user := registerTestUser(t, svc, "testuser")

	// Кошелек создан с начальным балансом
	wallet, err := storage.GetWallet(ctx, user.ID)
	if err != nil {
		t.Fatalf("Expected wallet to exist, got %v", err)
	}
	if wallet.Balance != 10000 {
		t.Fatalf("Expected initial balance 10000, got %.2f", wallet.Balance)
	}

	// Повтор имени пользователя
	_, err = svc.Register(ctx, "testuser", "another@example.com", "password123")
	if !errors.Is(err, service.ErrUserExists) {
		t.Fatalf("Expected ErrUserExists, got %v", err)
	}

	// Повтор email
	_, err = svc.Register(ctx, "otheruser", "testuser@example.com", "password123")
	if !errors.Is(err, service.ErrUserExists) {
		t.Fatalf("Expected ErrUserExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, 10000)
	ctx := context.Background()

	user := registerTestUser(t, svc, "testuser")

	authenticated, err := svc.Login(ctx, "testuser", "password123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if authenticated.ID != user.ID {
		t.Fatalf("Expected user ID %d, got %d", user.ID, authenticated.ID)
	}

	// Неверный пароль
	_, err = svc.Login(ctx, "testuser", "wrongpassword")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
	}

	// Деактивированный аккаунт
	storage.users[user.ID].IsActive = false
	_, err = svc.Login(ctx, "testuser", "password123")
	if !errors.Is(err, service.ErrAccountInactive) {
		t.Fatalf("Expected ErrAccountInactive, got %v", err)
	}
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, 100)
	ctx := context.Background()

	user := registerTestUser(t, svc, "testuser")

	// Вывод 150 при балансе 100
	_, err := svc.Withdraw(ctx, user.ID, 150)
	if !errors.Is(err, service.ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}

	// Баланс не изменился
	wallet, _ := storage.GetWallet(ctx, user.ID)
	if wallet.Balance != 100 {
		t.Fatalf("Expected balance 100 after failed withdrawal, got %.2f", wallet.Balance)
	}

	// Вывод 50 проходит
	overview, err := svc.Withdraw(ctx, user.ID, 50)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if overview.Balance != 50 {
		t.Fatalf("Expected balance 50, got %.2f", overview.Balance)
	}
}

func TestDeposit(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, 0)
	ctx := context.Background()

	user := registerTestUser(t, svc, "testuser")

	overview, err := svc.Deposit(ctx, user.ID, 250)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if overview.Balance != 250 {
		t.Fatalf("Expected balance 250, got %.2f", overview.Balance)
	}

	// Отрицательная сумма
	_, err = svc.Deposit(ctx, user.ID, -50)
	if !errors.Is(err, service.ErrInvalidAmount) {
		t.Fatalf("Expected ErrInvalidAmount, got %v", err)
	}

	// Журнал операций пополнился
	transactions, total, err := svc.Transactions(ctx, user.ID, 20, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if total != 1 || transactions[0].Type != storages.TransactionTypeDeposit {
		t.Fatalf("Expected one deposit transaction, got %d", total)
	}
}

func TestStakeValidation(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, 10000)
	ctx := context.Background()

	user := registerTestUser(t, svc, "testuser")
	pool := createTestPool(storage, 10, 100, 5000)

	// Нулевая сумма
	_, err := svc.Stake(ctx, user.ID, pool.ID, 0)
	if !errors.Is(err, service.ErrInvalidAmount) {
		t.Fatalf("Expected ErrInvalidAmount, got %v", err)
	}

	// Несуществующий пул
	_, err = svc.Stake(ctx, user.ID, 9999, 500)
	if !errors.Is(err, service.ErrPoolInactive) {
		t.Fatalf("Expected ErrPoolInactive, got %v", err)
	}

	// Ниже минимума
	_, err = svc.Stake(ctx, user.ID, pool.ID, 99.99)
	if !errors.Is(err, service.ErrBelowMinimum) {
		t.Fatalf("Expected ErrBelowMinimum, got %v", err)
	}

	// Ровно минимум проходит
	stake, err := svc.Stake(ctx, user.ID, pool.ID, 100)
	if err != nil {
		t.Fatalf("Expected stake at exact minimum to succeed, got %v", err)
	}
	if stake.Amount != 100 {
		t.Fatalf("Expected stake amount 100, got %.2f", stake.Amount)
	}

	// Превышение лимита на пользователя
	_, err = svc.Stake(ctx, user.ID, pool.ID, 4901)
	if !errors.Is(err, service.ErrAboveMaximum) {
		t.Fatalf("Expected ErrAboveMaximum, got %v", err)
	}

	// Недостаточно средств
	_, err = svc.Stake(ctx, user.ID, pool.ID, 4900)
	if err != nil {
		t.Fatalf("Expected stake within limits to succeed, got %v", err)
	}
	_, err = svc.Stake(ctx, user.ID, pool.ID, 100)
	if !errors.Is(err, service.ErrAboveMaximum) {
		t.Fatalf("Expected ErrAboveMaximum, got %v", err)
	}

	// Неактивный пул
	inactive := createTestPool(storage, 10, 0, 0)
	storage.pools[inactive.ID].IsActive = false
	_, err = svc.Stake(ctx, user.ID, inactive.ID, 100)
	if !errors.Is(err, service.ErrPoolInactive) {
		t.Fatalf("Expected ErrPoolInactive, got %v", err)
	}
}

func TestStakeMovesBalances(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, 1000)
	ctx := context.Background()

	user := registerTestUser(t, svc, "testuser")
	pool := createTestPool(storage, 10, 0, 0)

	_, err := svc.Stake(ctx, user.ID, pool.ID, 400)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	wallet, _ := storage.GetWallet(ctx, user.ID)
	if wallet.Balance != 600 {
		t.Fatalf("Expected wallet balance 600, got %.2f", wallet.Balance)
	}
	if storage.pools[pool.ID].TotalStaked != 400 {
		t.Fatalf("Expected pool total staked 400, got %.2f", storage.pools[pool.ID].TotalStaked)
	}

	// Недостаточно средств на второй стейк
	_, err = svc.Stake(ctx, user.ID, pool.ID, 700)
	if !errors.Is(err, service.ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}
}

func TestImmediateFullUnstake(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, 1000)
	ctx := context.Background()

	user := registerTestUser(t, svc, "testuser")
	pool := createTestPool(storage, 10, 0, 0)

	stake, err := svc.Stake(ctx, user.ID, pool.ID, 500)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Немедленный полный вывод возвращает ровно сумму стейка
	result, err := svc.Unstake(ctx, user.ID, stake.ID, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.UnstakedAmount != 500 {
		t.Fatalf("Expected unstaked amount 500, got %.2f", result.UnstakedAmount)
	}
	if !approx(result.RewardsClaimed, 0, 0.001) {
		t.Fatalf("Expected near-zero reward, got %.8f", result.RewardsClaimed)
	}

	wallet, _ := storage.GetWallet(ctx, user.ID)
	if !approx(wallet.Balance, 1000, 0.001) {
		t.Fatalf("Expected balance restored to 1000, got %.2f", wallet.Balance)
	}

	// Повторный вывод закрытого стейка
	_, err = svc.Unstake(ctx, user.ID, stake.ID, 0)
	if !errors.Is(err, service.ErrStakeInactive) {
		t.Fatalf("Expected ErrStakeInactive, got %v", err)
	}
}

func TestUnstakeExcessAmount(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, 1000)
	ctx := context.Background()

	user := registerTestUser(t, svc, "testuser")
	pool := createTestPool(storage, 10, 0, 0)

	stake, _ := svc.Stake(ctx, user.ID, pool.ID, 500)

	_, err := svc.Unstake(ctx, user.ID, stake.ID, 500.01)
	if !errors.Is(err, service.ErrExcessAmount) {
		t.Fatalf("Expected ErrExcessAmount, got %v", err)
	}

	// Чужой стейк неотличим от несуществующего
	other := registerTestUser(t, svc, "otheruser")
	_, err = svc.Unstake(ctx, other.ID, stake.ID, 100)
	if !errors.Is(err, service.ErrStakeNotFound) {
		t.Fatalf("Expected ErrStakeNotFound, got %v", err)
	}
}

func TestClaimAfterOneYear(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, 1000)
	ctx := context.Background()

	user := registerTestUser(t, svc, "testuser")
	pool := createTestPool(storage, 10, 0, 0)

	stake, _ := svc.Stake(ctx, user.ID, pool.ID, 1000)

	// Сдвигаем якорь начисления на 365 дней назад:
	// 1000 по 10% годовых дают ~100 награды
	storage.stakes[stake.ID].LastRewardCalculation = time.Now().Add(-365 * 24 * time.Hour)

	reward, err := svc.Claim(ctx, user.ID, stake.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !approx(reward, 100, 0.01) {
		t.Fatalf("Expected reward ~100, got %.8f", reward)
	}

	wallet, _ := storage.GetWallet(ctx, user.ID)
	if !approx(wallet.Balance, 100, 0.01) {
		t.Fatalf("Expected wallet balance ~100, got %.2f", wallet.Balance)
	}

	// Сразу после выплаты начислять нечего
	_, err = svc.Claim(ctx, user.ID, stake.ID)
	if !errors.Is(err, service.ErrNoRewards) {
		t.Fatalf("Expected ErrNoRewards, got %v", err)
	}

	// Выплата зафиксирована в истории наград
	total, err := storage.GetTotalEarned(ctx, user.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !approx(total, 100, 0.01) {
		t.Fatalf("Expected total earned ~100, got %.8f", total)
	}
}

func TestUnstakePartialResetsAccrual(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, 1000)
	ctx := context.Background()

	user := registerTestUser(t, svc, "testuser")
	pool := createTestPool(storage, 10, 0, 0)

	stake, _ := svc.Stake(ctx, user.ID, pool.ID, 1000)
	storage.stakes[stake.ID].LastRewardCalculation = time.Now().Add(-365 * 24 * time.Hour)

	// Частичный вывод выплачивает всю накопленную награду
	result, err := svc.Unstake(ctx, user.ID, stake.ID, 400)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.UnstakedAmount != 400 {
		t.Fatalf("Expected unstaked amount 400, got %.2f", result.UnstakedAmount)
	}
	if !approx(result.RewardsClaimed, 100, 0.01) {
		t.Fatalf("Expected reward ~100, got %.8f", result.RewardsClaimed)
	}

	// Стейк остался активным с уменьшенной суммой
	remaining, err := storage.GetStakeByID(ctx, stake.ID)
	if err != nil {
		t.Fatalf("Expected stake to exist, got %v", err)
	}
	if remaining.Status != storages.StakeStatusActive {
		t.Fatalf("Expected stake to stay active, got %s", remaining.Status)
	}
	if remaining.Amount != 600 {
		t.Fatalf("Expected remaining amount 600, got %.2f", remaining.Amount)
	}

	// Якорь начисления сброшен: повторная выплата невозможна
	_, err = svc.Claim(ctx, user.ID, stake.ID)
	if !errors.Is(err, service.ErrNoRewards) {
		t.Fatalf("Expected ErrNoRewards after anchor reset, got %v", err)
	}
}

func TestActiveStakesOverview(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, 2000)
	ctx := context.Background()

	user := registerTestUser(t, svc, "testuser")
	pool := createTestPool(storage, 10, 0, 0)

	svc.Stake(ctx, user.ID, pool.ID, 300)
	svc.Stake(ctx, user.ID, pool.ID, 200)

	stakes, err := svc.ActiveStakes(ctx, user.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(stakes) != 2 {
		t.Fatalf("Expected 2 active stakes, got %d", len(stakes))
	}

	overview, err := svc.Balance(ctx, user.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if overview.Balance != 1500 {
		t.Fatalf("Expected available balance 1500, got %.2f", overview.Balance)
	}
	if overview.StakedBalance != 500 {
		t.Fatalf("Expected staked balance 500, got %.2f", overview.StakedBalance)
	}
}

func TestDashboardOverview(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, 1000)
	ctx := context.Background()

	user := registerTestUser(t, svc, "testuser")
	pool := createTestPool(storage, 10, 0, 0)

	stake, _ := svc.Stake(ctx, user.ID, pool.ID, 500)
	storage.stakes[stake.ID].LastRewardCalculation = time.Now().Add(-365 * 24 * time.Hour)

	if _, err := svc.Claim(ctx, user.ID, stake.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	overview, err := svc.DashboardOverview(ctx, user.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if overview.TotalStaked != 500 {
		t.Fatalf("Expected total staked 500, got %.2f", overview.TotalStaked)
	}
	if !approx(overview.TotalEarned, 50, 0.01) {
		t.Fatalf("Expected total earned ~50, got %.8f", overview.TotalEarned)
	}
	if len(overview.ActivePositions) != 1 {
		t.Fatalf("Expected 1 active position, got %d", len(overview.ActivePositions))
	}
}
