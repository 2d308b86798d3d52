package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yield-farm-api/internal/api"
	"yield-farm-api/internal/api/middleware"
	"yield-farm-api/internal/cache"
	"yield-farm-api/internal/config"
	"yield-farm-api/internal/kafka"
	"yield-farm-api/internal/llama"
	"yield-farm-api/internal/logger"
	"yield-farm-api/internal/openai"
	"yield-farm-api/internal/poolsync"
	"yield-farm-api/internal/service"
	"yield-farm-api/internal/storages/postgres"
)

// @title Yield Farm API
// @version 1.0
// @description API for a demo yield farming platform: wallet, pools, staking, rewards and AI advisor
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Парсинг флагов командной строки
	configPath := flag.String("c", "", "Path to config file")
	flag.Parse()

	// Загрузка конфигурации
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Валидация конфигурации
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	log := logger.New(cfg.Logger.Level)
	log.Info("Starting yield-farm-api service...")

	// Подключение к базе данных
	dbConfig := &postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	storage, err := postgres.New(dbConfig, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer storage.Close()

	// Проверка подключения к БД
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := storage.Ping(ctx); err != nil {
		cancel()
		log.Fatalf("Database ping failed: %v", err)
	}
	cancel()
	log.Info("Database connection established")

	// Клиент внешнего фида пулов
	feedClient := llama.NewClient(cfg.Sync.FeedBaseURL, cfg.Sync.FeedTimeout, log)

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	if err := feedClient.Ping(ctx); err != nil {
		cancel()
		log.Warnf("Pool feed ping failed: %v (feed may be unavailable)", err)
	} else {
		cancel()
		log.Info("Connected to pool listings feed")
	}

	// Кеш списков фида
	listingsCache := cache.NewListingsCache(cfg.Cache.ListingsTTL)
	log.Info("Listings cache initialized")

	// Сервис синхронизации пулов
	poolSyncService := poolsync.NewService(storage, feedClient, listingsCache, poolsync.Config{
		Chain:           cfg.Sync.Chain,
		MinTVL:          cfg.Sync.MinTVL,
		MaxAPY:          cfg.Sync.MaxAPY,
		MaxPools:        cfg.Sync.MaxPools,
		MinStakeAmount:  cfg.Sync.MinStakeAmount,
		MaxStakePerUser: cfg.Sync.MaxStakePerUser,
	}, log)

	// Клиент AI-советника
	advisorClient := openai.NewClient(
		cfg.Advisor.BaseURL,
		cfg.Advisor.APIKey,
		cfg.Advisor.Model,
		cfg.Advisor.Timeout,
		log,
	)

	// Инициализация Kafka producer
	kafkaProducer := kafka.NewProducer(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		cfg.Kafka.OperationThreshold,
		log,
	)
	defer kafkaProducer.Close()

	// Создание сервисного слоя
	farmService := service.NewFarmService(
		storage,
		poolSyncService,
		advisorClient,
		kafkaProducer,
		cfg.Wallet.InitialBalance,
		log,
	)
	log.Info("Farm service initialized")

	// Фоновая синхронизация пулов
	scheduler := poolsync.NewScheduler(poolSyncService, cfg.Sync.Interval, cfg.Sync.MaxPools, log)
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	go scheduler.Run(schedulerCtx)
	log.Infof("Pool sync scheduler started, interval: %s", cfg.Sync.Interval)

	// Создание JWT middleware
	jwtMiddleware := middleware.NewJWTMiddleware(cfg.JWT.Secret, log)

	// Настройка роутера
	router := api.SetupRouter(
		farmService,
		poolSyncService,
		jwtMiddleware,
		cfg.JWT.Expiration,
		cfg.Sync.MaxPools,
		log,
		cfg.Server.GinMode,
	)

	// Создание HTTP сервера
	srv := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// Запуск HTTP сервера в горутине
	go func() {
		log.Infof("HTTP server is listening on port %s", cfg.Server.HTTPPort)
		log.Infof("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Ожидание сигнала завершения
	<-done
	log.Info("Shutting down server...")

	// Останавливаем фоновую синхронизацию и даем серверу дорешать запросы
	stopScheduler()

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
