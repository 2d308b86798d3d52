package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"yield-farm-api/internal/api/middleware"
	"yield-farm-api/internal/service"
)

// DashboardHandler обработчик сводки портфеля
type DashboardHandler struct {
	service *service.FarmService
	logger  *logrus.Logger
}

// NewDashboardHandler создает новый обработчик дашборда
func NewDashboardHandler(service *service.FarmService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger,
	}
}

// Overview возвращает сводку портфеля
// @Summary Get dashboard overview
// @Description Return available balance, staked total, pending and earned rewards and active positions
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.DashboardOverview
// @Failure 401 {object} map[string]string
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	overview, err := h.service.DashboardOverview(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// Rewards возвращает историю выплаченных наград
// @Summary Get reward history
// @Description Return a page of paid-out rewards, newest first
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/v1/dashboard/rewards [get]
func (h *DashboardHandler) Rewards(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, offset := pagination(c)

	rewards, total, err := h.service.RewardHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rewards": rewards,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}
