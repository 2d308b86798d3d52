package config

import "time"

// Server defaults
const (
	DefaultHTTPPort = "8080"
	DefaultGinMode  = "release"
	DefaultLogLevel = "info"
)

// Database defaults
const (
	DefaultDBHost            = "localhost"
	DefaultDBPort            = 5432
	DefaultDBUser            = "farm_user"
	DefaultDBPassword        = "farm_password"
	DefaultDBName            = "farm_db"
	DefaultDBSSLMode         = "disable"
	DefaultDBMaxOpenConns    = 25
	DefaultDBMaxIdleConns    = 5
	DefaultDBConnMaxLifetime = 5 * time.Minute
)

// JWT defaults
const (
	DefaultJWTSecret     = "change-me-in-production"
	DefaultJWTExpiration = 24 * time.Hour
)

// Wallet defaults
const (
	// Начальный баланс демо-кошелька нового пользователя
	DefaultInitialBalance = 10000.0
)

// Pool sync defaults
const (
	DefaultSyncFeedURL      = "https://yields.llama.fi"
	DefaultSyncFeedTimeout  = 30 * time.Second
	DefaultSyncInterval     = 6 * time.Hour
	DefaultSyncChain        = "Base"
	DefaultSyncMinTVL       = 10000.0
	DefaultSyncMaxAPY       = 1000.0
	DefaultSyncMaxPools     = 500
	DefaultPoolMinStake     = 10.0
	DefaultPoolMaxPerUser   = 0.0 // без лимита
	DefaultCacheListingsTTL = 5 * time.Minute
)

// Advisor defaults
const (
	DefaultAdvisorBaseURL = "https://api.openai.com/v1"
	DefaultAdvisorModel   = "gpt-4o-mini"
	DefaultAdvisorTimeout = 30 * time.Second
)

// Kafka defaults
const (
	DefaultKafkaBrokers            = "localhost:9092"
	DefaultKafkaTopic              = "large-operations"
	DefaultKafkaOperationThreshold = 5000.0
)
