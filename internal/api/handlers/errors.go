package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"yield-farm-api/internal/service"
)

// respondError транслирует типизированные ошибки сервисного слоя в HTTP-коды.
// Неопознанные ошибки отдаются как 500 без деталей.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrBelowMinimum),
		errors.Is(err, service.ErrAboveMaximum),
		errors.Is(err, service.ErrExcessAmount),
		errors.Is(err, service.ErrNoRewards),
		errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrNoStrategy):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrStakeInactive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrPoolInactive),
		errors.Is(err, service.ErrPoolNotFound),
		errors.Is(err, service.ErrStakeNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrChatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrAdvisorAuth):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Advisor is misconfigured"})

	case errors.Is(err, service.ErrAdvisorRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrAdvisorUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
