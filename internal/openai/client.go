// Package openai реализует минимальный клиент chat completions API
// для AI-советника.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Ошибки провайдера, различаемые по статусу ответа
var (
	ErrUnauthorized = errors.New("openai: invalid API key")
	ErrRateLimited  = errors.New("openai: rate limit exceeded")
	ErrUnavailable  = errors.New("openai: service unavailable")
)

// Message одно сообщение диалога
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Request параметры запроса chat completions
type Request struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	MaxTokens        int       `json:"max_tokens"`
	TopP             float64   `json:"top_p,omitempty"`
	FrequencyPenalty float64   `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64   `json:"presence_penalty,omitempty"`
}

type choice struct {
	Message Message `json:"message"`
}

type completionResponse struct {
	Choices []choice `json:"choices"`
}

// Client HTTP-клиент chat completions API
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient создает новый клиент советника
func NewClient(baseURL, apiKey, model string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Model возвращает сконфигурированную модель
func (c *Client) Model() string {
	return c.model
}

// Complete выполняет запрос chat completions и возвращает текст первого ответа
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if req.Model == "" {
		req.Model = c.model
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debugf("Requesting completion from model %s", req.Model)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Errorf("Completion request failed: %v", err)
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode >= 500:
		return "", ErrUnavailable
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("completion request failed with status %d", resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", nil
	}

	return parsed.Choices[0].Message.Content, nil
}
