package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"yield-farm-api/internal/api/middleware"
	"yield-farm-api/internal/service"
)

// StakeHandler обработчик для операций стейкинга
type StakeHandler struct {
	service *service.FarmService
	logger  *logrus.Logger
}

// NewStakeHandler создает новый обработчик стейкинга
func NewStakeHandler(service *service.FarmService, logger *logrus.Logger) *StakeHandler {
	return &StakeHandler{
		service: service,
		logger:  logger,
	}
}

// StakeRequest запрос на размещение средств в пуле
type StakeRequest struct {
	PoolID int64   `json:"pool_id" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// UnstakeRequest запрос на вывод из стейка. Нулевая сумма означает полный вывод.
type UnstakeRequest struct {
	StakeID int64   `json:"stake_id" binding:"required"`
	Amount  float64 `json:"amount"`
}

// ClaimRequest запрос на выплату накопленной награды
type ClaimRequest struct {
	StakeID int64 `json:"stake_id" binding:"required"`
}

// Stake размещает средства в пуле
// @Summary Stake funds into a pool
// @Description Debit the wallet and open a stake position in the pool
// @Tags staking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StakeRequest true "Stake parameters"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/stake [post]
func (h *StakeHandler) Stake(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req StakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	stake, err := h.service.Stake(c.Request.Context(), userID, req.PoolID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stake placed successfully",
		"stake": gin.H{
			"id":        stake.ID,
			"pool_id":   stake.PoolID,
			"amount":    stake.Amount,
			"staked_at": stake.StakedAt,
		},
	})
}

// Unstake выводит средства из стейка
// @Summary Unstake funds
// @Description Withdraw the stake fully or partially, paying out pending rewards
// @Tags staking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UnstakeRequest true "Unstake parameters; zero amount means full withdrawal"
// @Success 200 {object} storages.StakeResult
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/unstake [post]
func (h *StakeHandler) Unstake(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req UnstakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.service.Unstake(c.Request.Context(), userID, req.StakeID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Claim выплачивает накопленную награду
// @Summary Claim pending rewards
// @Description Pay out pending rewards of the stake without closing the position
// @Tags staking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ClaimRequest true "Claim parameters"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/claim [post]
func (h *StakeHandler) Claim(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	reward, err := h.service.Claim(c.Request.Context(), userID, req.StakeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Rewards claimed successfully",
		"rewards_claimed": reward,
	})
}

// GetActiveStakes возвращает активные стейки пользователя
// @Summary List active stakes
// @Description Return the user's active stakes with live pending rewards
// @Tags staking
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/v1/stakes/active [get]
func (h *StakeHandler) GetActiveStakes(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stakes, err := h.service.ActiveStakes(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stakes": stakes})
}
