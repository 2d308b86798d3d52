package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"yield-farm-api/internal/api/middleware"
	"yield-farm-api/internal/service"
)

// WalletHandler обработчик для операций с кошельком
type WalletHandler struct {
	service *service.FarmService
	logger  *logrus.Logger
}

// NewWalletHandler создает новый обработчик кошелька
func NewWalletHandler(service *service.FarmService, logger *logrus.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		logger:  logger,
	}
}

// AmountRequest запрос с суммой операции
type AmountRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// GetBalance возвращает агрегированное состояние средств
// @Summary Get wallet balance
// @Description Return available balance, staked balance and pending rewards
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} storages.WalletOverview
// @Failure 401 {object} map[string]string
// @Router /api/v1/wallet/balance [get]
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	overview, err := h.service.Balance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// Deposit пополняет демо-кошелек
// @Summary Deposit funds
// @Description Add funds to the demo wallet
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AmountRequest true "Deposit amount"
// @Success 200 {object} storages.WalletOverview
// @Failure 400 {object} map[string]string
// @Router /api/v1/wallet/deposit [post]
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	overview, err := h.service.Deposit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// Withdraw выводит средства с демо-кошелька
// @Summary Withdraw funds
// @Description Withdraw funds from the demo wallet
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AmountRequest true "Withdrawal amount"
// @Success 200 {object} storages.WalletOverview
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/wallet/withdraw [post]
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	overview, err := h.service.Withdraw(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetTransactions возвращает журнал операций пользователя
// @Summary Get transaction history
// @Description Return a page of the user's transaction log, newest first
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/v1/wallet/transactions [get]
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, offset := pagination(c)

	transactions, total, err := h.service.Transactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
