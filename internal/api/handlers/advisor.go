package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"yield-farm-api/internal/api/middleware"
	"yield-farm-api/internal/service"
	"yield-farm-api/internal/strategy"
)

// AdvisorHandler обработчик AI-советника и истории чатов
type AdvisorHandler struct {
	service *service.FarmService
	logger  *logrus.Logger
}

// NewAdvisorHandler создает новый обработчик советника
func NewAdvisorHandler(service *service.FarmService, logger *logrus.Logger) *AdvisorHandler {
	return &AdvisorHandler{
		service: service,
		logger:  logger,
	}
}

// ChatRequest запрос к советнику или ассистенту
type ChatRequest struct {
	Message string                `json:"message" binding:"required"`
	History []service.ChatMessage `json:"history"`
	Profile *strategy.Profile     `json:"profile"`
}

// StrategiesRequest запрос на генерацию стратегий
type StrategiesRequest struct {
	InvestmentAmount float64 `json:"investment_amount" binding:"required,gt=0"`
	ExpectedReturns  float64 `json:"expected_returns"`
	TargetAPY        float64 `json:"target_apy"`
}

// ChatSessionRequest запрос на сохранение сессии чата
type ChatSessionRequest struct {
	Title    string                `json:"title" binding:"required"`
	Messages []service.ChatMessage `json:"messages"`
	Profile  *strategy.Profile     `json:"profile"`
}

// Chat отправляет сообщение стратегическому советнику
// @Summary Chat with the strategy advisor
// @Description Send a message to the AI strategy advisor; the user profile is embedded into the prompt
// @Tags advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChatRequest true "Message, optional history and profile"
// @Success 200 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/advisor/chat [post]
func (h *AdvisorHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	reply, err := h.service.Chat(c.Request.Context(), req.Message, req.History, req.Profile)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// AssistantChat отправляет сообщение ассистенту платформы
// @Summary Chat with the platform assistant
// @Description Send a message to the global platform assistant
// @Tags advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChatRequest true "Message and optional history"
// @Success 200 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/assistant/chat [post]
func (h *AdvisorHandler) AssistantChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	reply, err := h.service.AssistantChat(c.Request.Context(), req.Message, req.History)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// GenerateStrategies строит стратегии распределения под профиль
// @Summary Generate allocation strategies
// @Description Build deterministic allocation strategies over active pools for the given profile
// @Tags advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StrategiesRequest true "Investment profile"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/advisor/strategies [post]
func (h *AdvisorHandler) GenerateStrategies(c *gin.Context) {
	var req StrategiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	strategies, err := h.service.GenerateStrategies(c.Request.Context(), strategy.Profile{
		InvestmentAmount: req.InvestmentAmount,
		ExpectedReturns:  req.ExpectedReturns,
		TargetAPY:        req.TargetAPY,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}

// ListChats возвращает сессии чата пользователя
// @Summary List chat sessions
// @Tags advisor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/advisor/chats [get]
func (h *AdvisorHandler) ListChats(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	chats, err := h.service.ListChatSessions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// GetChat возвращает сессию чата
// @Summary Get a chat session
// @Tags advisor
// @Produce json
// @Security BearerAuth
// @Param id path int true "Chat ID"
// @Success 200 {object} service.ChatSession
// @Failure 404 {object} map[string]string
// @Router /api/v1/advisor/chats/{id} [get]
func (h *AdvisorHandler) GetChat(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	chatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat id"})
		return
	}

	chat, err := h.service.GetChatSession(c.Request.Context(), chatID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, chat)
}

// CreateChat сохраняет новую сессию чата
// @Summary Save a chat session
// @Tags advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChatSessionRequest true "Chat session data"
// @Success 201 {object} service.ChatSession
// @Failure 400 {object} map[string]string
// @Router /api/v1/advisor/chats [post]
func (h *AdvisorHandler) CreateChat(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req ChatSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	chat, err := h.service.CreateChatSession(c.Request.Context(), userID, req.Title, req.Messages, req.Profile)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, chat)
}

// UpdateChat обновляет сессию чата
// @Summary Update a chat session
// @Tags advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Chat ID"
// @Param request body ChatSessionRequest true "Chat session data"
// @Success 200 {object} service.ChatSession
// @Failure 404 {object} map[string]string
// @Router /api/v1/advisor/chats/{id} [put]
func (h *AdvisorHandler) UpdateChat(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	chatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat id"})
		return
	}

	var req ChatSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	chat, err := h.service.UpdateChatSession(c.Request.Context(), chatID, userID, req.Title, req.Messages, req.Profile)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, chat)
}

// DeleteChat удаляет сессию чата
// @Summary Delete a chat session
// @Tags advisor
// @Produce json
// @Security BearerAuth
// @Param id path int true "Chat ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/advisor/chats/{id} [delete]
func (h *AdvisorHandler) DeleteChat(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	chatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat id"})
		return
	}

	if err := h.service.DeleteChatSession(c.Request.Context(), chatID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Chat deleted"})
}
