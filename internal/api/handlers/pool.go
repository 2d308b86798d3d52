package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"yield-farm-api/internal/api/middleware"
	"yield-farm-api/internal/poolsync"
	"yield-farm-api/internal/service"
	"yield-farm-api/internal/storages"
)

// PoolHandler обработчик для просмотра и администрирования пулов
type PoolHandler struct {
	service  *service.FarmService
	poolSync *poolsync.Service
	maxPools int
	logger   *logrus.Logger
}

// NewPoolHandler создает новый обработчик пулов
func NewPoolHandler(service *service.FarmService, poolSync *poolsync.Service, maxPools int, logger *logrus.Logger) *PoolHandler {
	return &PoolHandler{
		service:  service,
		poolSync: poolSync,
		maxPools: maxPools,
		logger:   logger,
	}
}

// PoolRequest запрос на ручное создание или обновление пула
type PoolRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	TokenSymbol     string  `json:"token_symbol"`
	APY             float64 `json:"apy" binding:"gte=0"`
	MinStakeAmount  float64 `json:"min_stake_amount" binding:"gte=0"`
	MaxStakePerUser float64 `json:"max_stake_per_user" binding:"gte=0"`
	IsActive        *bool   `json:"is_active"`
}

// ListPools возвращает активные пулы
// @Summary List active pools
// @Description Return active pools; with a valid token each pool carries the user's stake and pending rewards
// @Tags pools
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/pools [get]
func (h *PoolHandler) ListPools(c *gin.Context) {
	userID := middleware.OptionalUserID(c)

	pools, err := h.service.ListPools(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pools": pools})
}

// GetPool возвращает пул по ID
// @Summary Get pool by ID
// @Description Return a single pool; with a valid token it carries the user's stake and pending rewards
// @Tags pools
// @Produce json
// @Param id path int true "Pool ID"
// @Success 200 {object} service.PoolView
// @Failure 404 {object} map[string]string
// @Router /api/v1/pools/{id} [get]
func (h *PoolHandler) GetPool(c *gin.Context) {
	poolID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pool id"})
		return
	}

	userID := middleware.OptionalUserID(c)

	pool, err := h.service.GetPool(c.Request.Context(), poolID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pool)
}

// CreatePool создает пул вручную
// @Summary Create a pool
// @Description Create a pool manually (admin only)
// @Tags pools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PoolRequest true "Pool data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/v1/pools [post]
func (h *PoolHandler) CreatePool(c *gin.Context) {
	var req PoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	pool := &storages.Pool{
		Name:            req.Name,
		Description:     req.Description,
		TokenSymbol:     req.TokenSymbol,
		APY:             req.APY,
		MinStakeAmount:  req.MinStakeAmount,
		MaxStakePerUser: req.MaxStakePerUser,
		IsActive:        true,
	}
	if req.IsActive != nil {
		pool.IsActive = *req.IsActive
	}

	if err := h.service.CreatePool(c.Request.Context(), pool); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Pool created", "id": pool.ID})
}

// UpdatePool обновляет пул вручную
// @Summary Update a pool
// @Description Update an existing pool (admin only)
// @Tags pools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pool ID"
// @Param request body PoolRequest true "Pool data"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/pools/{id} [put]
func (h *PoolHandler) UpdatePool(c *gin.Context) {
	poolID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pool id"})
		return
	}

	var req PoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Сохраняем провенанс фида, обновляя только редактируемые поля
	existing, err := h.service.GetPool(c.Request.Context(), poolID, 0)
	if err != nil {
		respondError(c, err)
		return
	}

	pool := existing.Pool
	pool.Name = req.Name
	pool.Description = req.Description
	pool.TokenSymbol = req.TokenSymbol
	pool.APY = req.APY
	pool.MinStakeAmount = req.MinStakeAmount
	pool.MaxStakePerUser = req.MaxStakePerUser
	if req.IsActive != nil {
		pool.IsActive = *req.IsActive
	}

	if err := h.service.UpdatePool(c.Request.Context(), &pool); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pool updated"})
}

// SyncPools запускает цикл синхронизации с внешним фидом
// @Summary Trigger pool sync
// @Description Run a synchronization cycle against the external listings feed (admin only)
// @Tags pools
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} map[string]string
// @Router /api/v1/pools/sync [post]
func (h *PoolHandler) SyncPools(c *gin.Context) {
	synced, err := h.poolSync.Sync(c.Request.Context(), h.maxPools)
	if err != nil {
		if errors.Is(err, poolsync.ErrExternalFetch) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch pool listings"})
			return
		}
		h.logger.Errorf("Pool sync failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Pool sync failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pools synced", "synced": synced})
}

// CleanupDuplicates удаляет дубликаты пулов по имени
// @Summary Remove duplicate pools
// @Description Remove duplicate pool rows by name, keeping the earliest created (admin only)
// @Tags pools
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/pools/cleanup-duplicates [post]
func (h *PoolHandler) CleanupDuplicates(c *gin.Context) {
	removed, err := h.poolSync.RemoveDuplicates(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Duplicate cleanup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Duplicate cleanup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Duplicates removed", "removed": removed})
}

// TopPools возвращает лучшие пулы фида по APY
// @Summary Get top pools from the feed
// @Description Return top feed listings by APY, served through the TTL cache (admin only)
// @Tags pools
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of pools (default 10)"
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} map[string]string
// @Router /api/v1/pools/top [get]
func (h *PoolHandler) TopPools(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}

	pools, err := h.poolSync.TopPools(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, poolsync.ErrExternalFetch) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch pool listings"})
			return
		}
		h.logger.Errorf("Top pools request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get top pools"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pools": pools})
}
