package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"yield-farm-api/internal/api/handlers"
	"yield-farm-api/internal/api/middleware"
	"yield-farm-api/internal/poolsync"
	"yield-farm-api/internal/service"
)

// SetupRouter настраивает и возвращает роутер со всеми эндпоинтами
func SetupRouter(
	farmService *service.FarmService,
	poolSyncService *poolsync.Service,
	jwtMiddleware *middleware.JWTMiddleware,
	tokenTTL time.Duration,
	syncMaxPools int,
	logger *logrus.Logger,
	ginMode string,
) *gin.Engine {
	gin.SetMode(ginMode)

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Инициализация handlers
	authHandler := handlers.NewAuthHandler(farmService, jwtMiddleware, tokenTTL, logger)
	walletHandler := handlers.NewWalletHandler(farmService, logger)
	stakeHandler := handlers.NewStakeHandler(farmService, logger)
	poolHandler := handlers.NewPoolHandler(farmService, poolSyncService, syncMaxPools, logger)
	dashboardHandler := handlers.NewDashboardHandler(farmService, logger)
	advisorHandler := handlers.NewAdvisorHandler(farmService, logger)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (без авторизации)
		v1.POST("/register", authHandler.Register)
		v1.POST("/login", authHandler.Login)

		// Пулы доступны анонимно, но с токеном дополняются данными пользователя
		public := v1.Group("")
		public.Use(jwtMiddleware.OptionalAuth())
		{
			public.GET("/pools", poolHandler.ListPools)
			public.GET("/pools/:id", poolHandler.GetPool)
		}

		// Protected routes (требуют авторизации)
		authorized := v1.Group("")
		authorized.Use(jwtMiddleware.Auth())
		{
			authorized.GET("/profile", authHandler.Profile)

			// Wallet operations
			authorized.GET("/wallet/balance", walletHandler.GetBalance)
			authorized.POST("/wallet/deposit", walletHandler.Deposit)
			authorized.POST("/wallet/withdraw", walletHandler.Withdraw)
			authorized.GET("/wallet/transactions", walletHandler.GetTransactions)

			// Staking operations
			authorized.POST("/stake", stakeHandler.Stake)
			authorized.POST("/unstake", stakeHandler.Unstake)
			authorized.POST("/claim", stakeHandler.Claim)
			authorized.GET("/stakes/active", stakeHandler.GetActiveStakes)

			// Dashboard
			authorized.GET("/dashboard", dashboardHandler.Overview)
			authorized.GET("/dashboard/rewards", dashboardHandler.Rewards)

			// AI advisor
			authorized.POST("/advisor/chat", advisorHandler.Chat)
			authorized.POST("/advisor/strategies", advisorHandler.GenerateStrategies)
			authorized.POST("/assistant/chat", advisorHandler.AssistantChat)
			authorized.GET("/advisor/chats", advisorHandler.ListChats)
			authorized.POST("/advisor/chats", advisorHandler.CreateChat)
			authorized.GET("/advisor/chats/:id", advisorHandler.GetChat)
			authorized.PUT("/advisor/chats/:id", advisorHandler.UpdateChat)
			authorized.DELETE("/advisor/chats/:id", advisorHandler.DeleteChat)

			// Admin operations
			admin := authorized.Group("")
			admin.Use(jwtMiddleware.AdminOnly())
			{
				admin.POST("/pools", poolHandler.CreatePool)
				admin.PUT("/pools/:id", poolHandler.UpdatePool)
				admin.POST("/pools/sync", poolHandler.SyncPools)
				admin.POST("/pools/cleanup-duplicates", poolHandler.CleanupDuplicates)
				admin.GET("/pools/top", poolHandler.TopPools)
			}
		}
	}

	return router
}
