// Package llama реализует клиент для внешнего фида пулов доходности
// (DefiLlama-совместимый API).
package llama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ListedPool запись фида о пуле
type ListedPool struct {
	Pool             string      `json:"pool"`
	Chain            string      `json:"chain"`
	Project          string      `json:"project"`
	Symbol           string      `json:"symbol"`
	TvlUsd           float64     `json:"tvlUsd"`
	APY              float64     `json:"apy"`
	APYBase          float64     `json:"apyBase"`
	APYReward        float64     `json:"apyReward"`
	RewardTokens     []string    `json:"rewardTokens"`
	UnderlyingTokens []string    `json:"underlyingTokens"`
	PoolMeta         string      `json:"poolMeta"`
	URL              string      `json:"url"`
	ILRisk           string      `json:"ilRisk"`
	Exposure         string      `json:"exposure"`
	Predictions      Predictions `json:"predictions"`
}

// Predictions оценка риска пула от провайдера фида
type Predictions struct {
	PredictedClass       string  `json:"predictedClass"`
	PredictedProbability float64 `json:"predictedProbability"`
	BinnedConfidence     float64 `json:"binnedConfidence"`
}

// poolsResponse ответ эндпоинта /pools
type poolsResponse struct {
	Status string       `json:"status"`
	Data   []ListedPool `json:"data"`
}

// Client HTTP-клиент фида пулов
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient создает новый клиент фида
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchPools загружает полный список пулов из фида
func (c *Client) FetchPools(ctx context.Context) ([]ListedPool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/pools", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Requesting pool listings from external feed")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("Failed to fetch pool listings: %v", err)
		return nil, fmt.Errorf("failed to fetch pools: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Errorf("Pool feed returned status %d", resp.StatusCode)
		return nil, fmt.Errorf("failed to fetch pools: received status %d", resp.StatusCode)
	}

	var parsed poolsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode pool listings: %w", err)
	}

	if parsed.Status != "success" {
		c.logger.Warnf("Pool feed returned status %q, treating as empty", parsed.Status)
		return nil, nil
	}

	c.logger.Debugf("Received %d pool listings", len(parsed.Data))
	return parsed.Data, nil
}

// Ping проверяет доступность фида
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.FetchPools(ctx)
	return err
}
