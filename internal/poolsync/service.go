// Package poolsync реализует синхронизацию таблицы пулов с внешним фидом:
// загрузка списков, нормализация, фильтрация, дедупликация и upsert.
package poolsync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"yield-farm-api/internal/cache"
	"yield-farm-api/internal/llama"
	"yield-farm-api/internal/storages"
)

// ErrExternalFetch ошибка загрузки списков из внешнего фида
var ErrExternalFetch = errors.New("failed to fetch external pool listings")

// Feed абстракция фида пулов, реализуется llama.Client
type Feed interface {
	FetchPools(ctx context.Context) ([]llama.ListedPool, error)
}

// Store подмножество хранилища, нужное синхронизации
type Store interface {
	ListPoolsByCreation(ctx context.Context) ([]storages.Pool, error)
	DeletePools(ctx context.Context, poolIDs []int64) error
	GetPoolByExternalID(ctx context.Context, externalID string) (*storages.Pool, error)
	GetPoolByName(ctx context.Context, name string) (*storages.Pool, error)
	CreatePool(ctx context.Context, pool *storages.Pool) error
	UpdatePool(ctx context.Context, pool *storages.Pool) error
}

// Config параметры фильтрации фида
type Config struct {
	Chain           string  // целевая сеть, например "Base"
	MinTVL          float64 // минимальный TVL в долларах
	MaxAPY          float64 // отсечка подозрительно высоких APY
	MaxPools        int     // максимум пулов за цикл
	MinStakeAmount  float64 // дефолтный минимальный стейк для новых пулов
	MaxStakePerUser float64 // дефолтный лимит на пользователя
}

// NormalizedPool нормализованная запись фида
type NormalizedPool struct {
	PoolID      string  `json:"pool_id"`
	Chain       string  `json:"chain"`
	Project     string  `json:"project"`
	Symbol      string  `json:"symbol"`
	TvlUsd      float64 `json:"tvl_usd"`
	APY         float64 `json:"apy"`
	APYBase     float64 `json:"apy_base"`
	APYReward   float64 `json:"apy_reward"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
}

// Service сервис синхронизации пулов
type Service struct {
	store  Store
	feed   Feed
	cache  *cache.ListingsCache
	cfg    Config
	logger *logrus.Logger
}

// NewService создает новый сервис синхронизации
func NewService(store Store, feed Feed, listingsCache *cache.ListingsCache, cfg Config, logger *logrus.Logger) *Service {
	return &Service{
		store:  store,
		feed:   feed,
		cache:  listingsCache,
		cfg:    cfg,
		logger: logger,
	}
}

// Sync выполняет один цикл синхронизации и возвращает число обработанных пулов.
//
// Ошибка загрузки фида прерывает цикл целиком; ошибка upsert отдельного
// пула логируется, уже записанные пулы не откатываются (best-effort).
func (s *Service) Sync(ctx context.Context, maxPools int) (int, error) {
	if maxPools <= 0 {
		maxPools = s.cfg.MaxPools
	}

	// Сначала убираем дубликаты, накопившиеся в таблице
	if removed, err := s.RemoveDuplicates(ctx); err != nil {
		s.logger.Warnf("Failed to remove duplicate pools: %v", err)
	} else if removed > 0 {
		s.logger.Infof("Removed %d duplicate pools", removed)
	}

	listings, err := s.feed.FetchPools(ctx)
	if err != nil {
		s.logger.Errorf("Pool sync aborted: %v", err)
		return 0, fmt.Errorf("%w: %v", ErrExternalFetch, err)
	}

	normalized := make([]NormalizedPool, 0, len(listings))
	for _, listed := range listings {
		normalized = append(normalized, normalize(listed))
	}

	// Фильтр качества: целевая сеть, минимальный TVL, вменяемый APY
	filtered := make([]NormalizedPool, 0, len(normalized))
	for _, p := range normalized {
		if !strings.EqualFold(p.Chain, s.cfg.Chain) {
			continue
		}
		if p.TvlUsd <= s.cfg.MinTVL {
			continue
		}
		if p.APY <= 0 || p.APY >= s.cfg.MaxAPY {
			continue
		}
		filtered = append(filtered, p)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].TvlUsd > filtered[j].TvlUsd
	})

	if len(filtered) > maxPools {
		filtered = filtered[:maxPools]
	}

	synced := 0
	for _, p := range filtered {
		if err := s.upsertPool(ctx, p); err != nil {
			s.logger.Errorf("Failed to upsert pool %s: %v", p.Name, err)
			continue
		}
		synced++
	}

	s.logger.Infof("Pool sync completed: %d pools synced (chain=%s)", synced, s.cfg.Chain)
	return synced, nil
}

// RemoveDuplicates удаляет пулы с одинаковым именем, оставляя самый ранний
func (s *Service) RemoveDuplicates(ctx context.Context) (int, error) {
	pools, err := s.store.ListPoolsByCreation(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pools: %w", err)
	}

	seen := make(map[string]int64, len(pools))
	var duplicates []int64

	for _, pool := range pools {
		if _, ok := seen[pool.Name]; ok {
			duplicates = append(duplicates, pool.ID)
			continue
		}
		seen[pool.Name] = pool.ID
	}

	if len(duplicates) == 0 {
		return 0, nil
	}

	if err := s.store.DeletePools(ctx, duplicates); err != nil {
		return 0, fmt.Errorf("failed to delete duplicate pools: %w", err)
	}

	return len(duplicates), nil
}

// TopPools возвращает лучшие по APY пулы прямо из фида (через кеш)
func (s *Service) TopPools(ctx context.Context, limit int) ([]NormalizedPool, error) {
	listings, ok := s.cache.Get()
	if !ok {
		var err error
		listings, err = s.feed.FetchPools(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExternalFetch, err)
		}
		s.cache.Set(listings)
	}

	pools := make([]NormalizedPool, 0, len(listings))
	for _, listed := range listings {
		p := normalize(listed)
		if p.TvlUsd > 0 && p.APY >= 0 {
			pools = append(pools, p)
		}
	}

	sort.SliceStable(pools, func(i, j int) bool {
		return pools[i].APY > pools[j].APY
	})

	if len(pools) > limit {
		pools = pools[:limit]
	}

	return pools, nil
}

// upsertPool обновляет существующий пул или создает новый.
// Сопоставление: сначала по внешнему идентификатору, затем по точному имени.
func (s *Service) upsertPool(ctx context.Context, p NormalizedPool) error {
	existing, err := s.store.GetPoolByExternalID(ctx, p.PoolID)
	if err != nil && !errors.Is(err, storages.ErrNotFound) {
		return err
	}

	if existing == nil {
		existing, err = s.store.GetPoolByName(ctx, p.Name)
		if err != nil && !errors.Is(err, storages.ErrNotFound) {
			return err
		}
	}

	if existing != nil {
		existing.Name = p.Name
		existing.Description = p.Description
		existing.TokenSymbol = p.Symbol
		existing.APY = p.APY
		existing.TotalStaked = p.TvlUsd
		existing.IsActive = true
		existing.Chain = p.Chain
		existing.Project = p.Project
		existing.ExternalPoolID = p.PoolID
		existing.TVLUsd = p.TvlUsd
		existing.URL = p.URL
		return s.store.UpdatePool(ctx, existing)
	}

	return s.store.CreatePool(ctx, &storages.Pool{
		Name:            p.Name,
		Description:     p.Description,
		TokenSymbol:     p.Symbol,
		APY:             p.APY,
		TotalStaked:     p.TvlUsd,
		MinStakeAmount:  s.cfg.MinStakeAmount,
		MaxStakePerUser: s.cfg.MaxStakePerUser,
		IsActive:        true,
		Chain:           p.Chain,
		Project:         p.Project,
		ExternalPoolID:  p.PoolID,
		TVLUsd:          p.TvlUsd,
		URL:             p.URL,
	})
}

// normalize приводит запись фида к внутреннему виду.
// Отсутствующие APY и TVL считаются нулевыми и отсеиваются фильтром.
func normalize(listed llama.ListedPool) NormalizedPool {
	name := fmt.Sprintf("%s %s", listed.Project, listed.Symbol)

	parts := []string{
		fmt.Sprintf("%s pool on %s", listed.Project, listed.Chain),
		fmt.Sprintf("Symbol: %s", listed.Symbol),
	}

	if listed.TvlUsd > 0 {
		parts = append(parts, fmt.Sprintf("TVL: $%s", formatNumber(listed.TvlUsd)))
	}
	if listed.APYBase > 0 {
		parts = append(parts, fmt.Sprintf("Base APY: %.2f%%", listed.APYBase))
	}
	if listed.APYReward > 0 {
		parts = append(parts, fmt.Sprintf("Reward APY: %.2f%%", listed.APYReward))
	}
	if len(listed.RewardTokens) > 0 {
		parts = append(parts, fmt.Sprintf("Rewards: %s", strings.Join(listed.RewardTokens, ", ")))
	}
	if len(listed.UnderlyingTokens) > 0 {
		parts = append(parts, fmt.Sprintf("Assets: %s", strings.Join(listed.UnderlyingTokens, ", ")))
	}
	if listed.PoolMeta != "" {
		parts = append(parts, listed.PoolMeta)
	}
	if listed.Predictions.PredictedClass != "" {
		parts = append(parts, fmt.Sprintf("Risk: %s", listed.Predictions.PredictedClass))
	}
	if listed.ILRisk != "" {
		parts = append(parts, fmt.Sprintf("IL Risk: %s", listed.ILRisk))
	}
	if listed.Exposure != "" {
		parts = append(parts, fmt.Sprintf("Exposure: %s", listed.Exposure))
	}

	description := fmt.Sprintf("Pool ID: %s • %s", listed.Pool, strings.Join(parts, " • "))

	return NormalizedPool{
		PoolID:      listed.Pool,
		Chain:       listed.Chain,
		Project:     listed.Project,
		Symbol:      listed.Symbol,
		TvlUsd:      listed.TvlUsd,
		APY:         listed.APY,
		APYBase:     listed.APYBase,
		APYReward:   listed.APYReward,
		Name:        name,
		Description: description,
		URL:         listed.URL,
	}
}

func formatNumber(value float64) string {
	switch {
	case value >= 1e9:
		return fmt.Sprintf("%.2fB", value/1e9)
	case value >= 1e6:
		return fmt.Sprintf("%.2fM", value/1e6)
	case value >= 1e3:
		return fmt.Sprintf("%.2fK", value/1e3)
	default:
		return fmt.Sprintf("%.2f", value)
	}
}
