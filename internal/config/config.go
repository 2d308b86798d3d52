package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Wallet   WalletConfig
	Sync     SyncConfig
	Advisor  AdvisorConfig
	Cache    CacheConfig
	Kafka    KafkaConfig
	Logger   LoggerConfig
}

// ServerConfig содержит конфигурацию сервера
type ServerConfig struct {
	HTTPPort string
	GinMode  string
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
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

// JWTConfig содержит конфигурацию JWT
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// WalletConfig содержит конфигурацию демо-кошелька
type WalletConfig struct {
	InitialBalance float64
}

// SyncConfig содержит конфигурацию синхронизации пулов с внешним фидом
type SyncConfig struct {
	FeedBaseURL     string
	FeedTimeout     time.Duration
	Interval        time.Duration
	Chain           string
	MinTVL          float64
	MaxAPY          float64
	MaxPools        int
	MinStakeAmount  float64
	MaxStakePerUser float64
}

// AdvisorConfig содержит конфигурацию клиента AI-советника
type AdvisorConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// CacheConfig содержит конфигурацию кеша
type CacheConfig struct {
	ListingsTTL time.Duration
}

// KafkaConfig содержит конфигурацию Kafka
type KafkaConfig struct {
	Brokers            []string
	Topic              string
	OperationThreshold float64
}

// LoggerConfig содержит конфигурацию логгера
type LoggerConfig struct {
	Level string
}

// Load загружает конфигурацию из файла окружения
func Load(configPath string) (*Config, error) {
	if configPath != "" {
		if err := godotenv.Load(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg := &Config{}

	// Server
	cfg.Server.HTTPPort = getEnv("HTTP_PORT", DefaultHTTPPort)
	cfg.Server.GinMode = getEnv("GIN_MODE", DefaultGinMode)

	// Database
	cfg.Database.Host = getEnv("DB_HOST", DefaultDBHost)
	cfg.Database.Port = getEnvInt("DB_PORT", DefaultDBPort)
	cfg.Database.User = getEnv("DB_USER", DefaultDBUser)
	cfg.Database.Password = getEnv("DB_PASSWORD", DefaultDBPassword)
	cfg.Database.DBName = getEnv("DB_NAME", DefaultDBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", DefaultDBSSLMode)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", DefaultDBMaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", DefaultDBMaxIdleConns)
	cfg.Database.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", DefaultDBConnMaxLifetime)

	// JWT
	cfg.JWT.Secret = getEnv("JWT_SECRET", DefaultJWTSecret)
	cfg.JWT.Expiration = getEnvDuration("JWT_EXPIRATION", DefaultJWTExpiration)

	// Wallet
	cfg.Wallet.InitialBalance = getEnvFloat("WALLET_INITIAL_BALANCE", DefaultInitialBalance)

	// Pool sync
	cfg.Sync.FeedBaseURL = getEnv("SYNC_FEED_URL", DefaultSyncFeedURL)
	cfg.Sync.FeedTimeout = getEnvDuration("SYNC_FEED_TIMEOUT", DefaultSyncFeedTimeout)
	cfg.Sync.Interval = getEnvDuration("SYNC_INTERVAL", DefaultSyncInterval)
	cfg.Sync.Chain = getEnv("SYNC_CHAIN", DefaultSyncChain)
	cfg.Sync.MinTVL = getEnvFloat("SYNC_MIN_TVL", DefaultSyncMinTVL)
	cfg.Sync.MaxAPY = getEnvFloat("SYNC_MAX_APY", DefaultSyncMaxAPY)
	cfg.Sync.MaxPools = getEnvInt("SYNC_MAX_POOLS", DefaultSyncMaxPools)
	cfg.Sync.MinStakeAmount = getEnvFloat("SYNC_POOL_MIN_STAKE", DefaultPoolMinStake)
	cfg.Sync.MaxStakePerUser = getEnvFloat("SYNC_POOL_MAX_PER_USER", DefaultPoolMaxPerUser)

	// Advisor
	cfg.Advisor.BaseURL = getEnv("OPENAI_BASE_URL", DefaultAdvisorBaseURL)
	cfg.Advisor.APIKey = getEnv("OPENAI_API_KEY", "")
	cfg.Advisor.Model = getEnv("OPENAI_MODEL", DefaultAdvisorModel)
	cfg.Advisor.Timeout = getEnvDuration("OPENAI_TIMEOUT", DefaultAdvisorTimeout)

	// Cache
	cfg.Cache.ListingsTTL = getEnvDuration("CACHE_LISTINGS_TTL", DefaultCacheListingsTTL)

	// Kafka
	brokers := getEnv("KAFKA_BROKERS", DefaultKafkaBrokers)
	cfg.Kafka.Brokers = strings.Split(brokers, ",")
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", DefaultKafkaTopic)
	cfg.Kafka.OperationThreshold = getEnvFloat("KAFKA_OPERATION_THRESHOLD", DefaultKafkaOperationThreshold)

	// Logger
	cfg.Logger.Level = getEnv("LOG_LEVEL", DefaultLogLevel)

	return cfg, nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленную переменную окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения типа float64
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения типа duration
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.JWT.Secret == "" || c.JWT.Secret == "your-super-secret-jwt-key-change-this-in-production" {
		return fmt.Errorf("JWT_SECRET must be set to a secure value")
	}

	if c.Wallet.InitialBalance < 0 {
		return fmt.Errorf("WALLET_INITIAL_BALANCE must not be negative")
	}

	if c.Sync.Interval <= 0 {
		return fmt.Errorf("SYNC_INTERVAL must be positive")
	}

	if c.Sync.MaxPools <= 0 {
		return fmt.Errorf("SYNC_MAX_POOLS must be positive")
	}

	if _, err := logrus.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Logger.Level)
	}

	return nil
}
