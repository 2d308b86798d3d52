package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Config содержит конфигурацию для подключения к PostgreSQL
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db     *sql.DB
	logger *logrus.Logger
}

// New создает новое подключение к PostgreSQL
func New(cfg *Config, logger *logrus.Logger) (*PostgresStorage, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to PostgreSQL")

	storage := &PostgresStorage{
		db:     db,
		logger: logger,
	}

	// Инициализация схемы БД
	if err := storage.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema создает необходимые таблицы, если они не существуют
func (s *PostgresStorage) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(50) UNIQUE NOT NULL,
		email VARCHAR(100) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS wallets (
		id SERIAL PRIMARY KEY,
		user_id INTEGER UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		balance NUMERIC(24, 8) NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CHECK (balance >= 0)
	);

	CREATE TABLE IF NOT EXISTS pools (
		id SERIAL PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		token_symbol VARCHAR(50) NOT NULL DEFAULT '',
		apy NUMERIC(20, 8) NOT NULL DEFAULT 0,
		total_staked NUMERIC(24, 8) NOT NULL DEFAULT 0,
		min_stake_amount NUMERIC(20, 8) NOT NULL DEFAULT 0,
		max_stake_per_user NUMERIC(24, 8) NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		chain VARCHAR(50) NOT NULL DEFAULT '',
		project VARCHAR(100) NOT NULL DEFAULT '',
		external_pool_id VARCHAR(100) NOT NULL DEFAULT '',
		tvl_usd NUMERIC(24, 8) NOT NULL DEFAULT 0,
		url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stakes (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		pool_id INTEGER NOT NULL REFERENCES pools(id) ON DELETE CASCADE,
		amount NUMERIC(24, 8) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		staked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		unstaked_at TIMESTAMP,
		last_reward_calculation TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CHECK (amount > 0)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id SERIAL PRIMARY KEY,
		reference UUID NOT NULL,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		pool_id INTEGER REFERENCES pools(id) ON DELETE SET NULL,
		type VARCHAR(20) NOT NULL,
		amount NUMERIC(24, 8) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'completed',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS rewards (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		stake_id INTEGER NOT NULL REFERENCES stakes(id) ON DELETE CASCADE,
		pool_id INTEGER NOT NULL REFERENCES pools(id) ON DELETE CASCADE,
		amount NUMERIC(24, 8) NOT NULL,
		type VARCHAR(20) NOT NULL DEFAULT 'staking',
		claimed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS ai_chats (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title VARCHAR(200) NOT NULL,
		messages JSONB NOT NULL DEFAULT '[]',
		profile JSONB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_wallets_user ON wallets(user_id);
	CREATE INDEX IF NOT EXISTS idx_pools_name ON pools(name);
	CREATE INDEX IF NOT EXISTS idx_pools_external ON pools(external_pool_id);
	CREATE INDEX IF NOT EXISTS idx_pools_active ON pools(is_active);
	CREATE INDEX IF NOT EXISTS idx_stakes_user_status ON stakes(user_id, status);
	CREATE INDEX IF NOT EXISTS idx_stakes_pool ON stakes(pool_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_created ON transactions(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_rewards_user ON rewards(user_id);
	CREATE INDEX IF NOT EXISTS idx_rewards_claimed ON rewards(claimed_at DESC);
	CREATE INDEX IF NOT EXISTS idx_ai_chats_user ON ai_chats(user_id, updated_at DESC);
	`

	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.logger.Info("Database schema initialized")
	return nil
}

// Close закрывает соединение с базой данных
func (s *PostgresStorage) Close() error {
	if s.db != nil {
		s.logger.Info("Closing database connection")
		return s.db.Close()
	}
	return nil
}

// Ping проверяет соединение с базой данных
func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
