package poolsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yield-farm-api/internal/cache"
	"yield-farm-api/internal/llama"
	"yield-farm-api/internal/storages"
)

type fakeFeed struct {
	listings []llama.ListedPool
	err      error
	calls    int
}

func (f *fakeFeed) FetchPools(ctx context.Context) ([]llama.ListedPool, error) {
	f.calls++
	return f.listings, f.err
}

type fakeStore struct {
	pools   []storages.Pool
	nextID  int64
	deleted []int64
}

func (s *fakeStore) ListPoolsByCreation(ctx context.Context) ([]storages.Pool, error) {
	out := make([]storages.Pool, len(s.pools))
	copy(out, s.pools)
	return out, nil
}

func (s *fakeStore) DeletePools(ctx context.Context, poolIDs []int64) error {
	s.deleted = append(s.deleted, poolIDs...)
	var kept []storages.Pool
	for _, p := range s.pools {
		drop := false
		for _, id := range poolIDs {
			if p.ID == id {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, p)
		}
	}
	s.pools = kept
	return nil
}

func (s *fakeStore) GetPoolByExternalID(ctx context.Context, externalID string) (*storages.Pool, error) {
	for i := range s.pools {
		if s.pools[i].ExternalPoolID == externalID {
			return &s.pools[i], nil
		}
	}
	return nil, storages.ErrNotFound
}

func (s *fakeStore) GetPoolByName(ctx context.Context, name string) (*storages.Pool, error) {
	for i := range s.pools {
		if s.pools[i].Name == name {
			return &s.pools[i], nil
		}
	}
	return nil, storages.ErrNotFound
}

func (s *fakeStore) CreatePool(ctx context.Context, pool *storages.Pool) error {
	s.nextID++
	pool.ID = s.nextID
	pool.CreatedAt = time.Now()
	s.pools = append(s.pools, *pool)
	return nil
}

func (s *fakeStore) UpdatePool(ctx context.Context, pool *storages.Pool) error {
	for i := range s.pools {
		if s.pools[i].ID == pool.ID {
			s.pools[i] = *pool
			return nil
		}
	}
	return storages.ErrNotFound
}

func testConfig() Config {
	return Config{
		Chain:           "Base",
		MinTVL:          10000,
		MaxAPY:          1000,
		MaxPools:        500,
		MinStakeAmount:  0.01,
		MaxStakePerUser: 1000000,
	}
}

func newTestService(store Store, feed Feed) *Service {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewService(store, feed, cache.NewListingsCache(time.Minute), testConfig(), logger)
}

func TestSyncFiltersAndInserts(t *testing.T) {
	feed := &fakeFeed{listings: []llama.ListedPool{
		{Pool: "p1", Chain: "Base", Project: "aave-v3", Symbol: "USDC", TvlUsd: 5000000, APY: 4.2},
		{Pool: "p2", Chain: "Ethereum", Project: "lido", Symbol: "STETH", TvlUsd: 9000000, APY: 3.5}, // не та сеть
		{Pool: "p3", Chain: "base", Project: "aerodrome", Symbol: "WETH-USDC", TvlUsd: 800000, APY: 25},
		{Pool: "p4", Chain: "Base", Project: "tiny", Symbol: "TINY", TvlUsd: 500, APY: 12},     // TVL ниже порога
		{Pool: "p5", Chain: "Base", Project: "scam", Symbol: "MOON", TvlUsd: 50000, APY: 4200}, // подозрительный APY
		{Pool: "p6", Chain: "Base", Project: "dead", Symbol: "DEAD", TvlUsd: 50000, APY: 0},    // нулевой APY
	}}
	store := &fakeStore{}
	svc := newTestService(store, feed)

	synced, err := svc.Sync(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 2, synced)
	require.Len(t, store.pools, 2)
	// Сортировка по TVL по убыванию
	assert.Equal(t, "aave-v3 USDC", store.pools[0].Name)
	assert.Equal(t, "aerodrome WETH-USDC", store.pools[1].Name)
	assert.True(t, store.pools[0].IsActive)
	assert.Equal(t, 0.01, store.pools[0].MinStakeAmount)
}

func TestSyncUpdatesExistingByExternalID(t *testing.T) {
	store := &fakeStore{}
	require.NoError(t, store.CreatePool(context.Background(), &storages.Pool{
		Name:           "aave-v3 USDC",
		ExternalPoolID: "p1",
		APY:            3.0,
		IsActive:       false,
	}))

	feed := &fakeFeed{listings: []llama.ListedPool{
		{Pool: "p1", Chain: "Base", Project: "aave-v3", Symbol: "USDC", TvlUsd: 5000000, APY: 6.5},
	}}
	svc := newTestService(store, feed)

	synced, err := svc.Sync(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	require.Len(t, store.pools, 1)
	assert.InDelta(t, 6.5, store.pools[0].APY, 1e-9)
	assert.True(t, store.pools[0].IsActive)
}

func TestSyncCapsAtMaxPools(t *testing.T) {
	feed := &fakeFeed{listings: []llama.ListedPool{
		{Pool: "a", Chain: "Base", Project: "one", Symbol: "A", TvlUsd: 300000, APY: 5},
		{Pool: "b", Chain: "Base", Project: "two", Symbol: "B", TvlUsd: 200000, APY: 6},
		{Pool: "c", Chain: "Base", Project: "three", Symbol: "C", TvlUsd: 100000, APY: 7},
	}}
	store := &fakeStore{}
	svc := newTestService(store, feed)

	synced, err := svc.Sync(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 2, synced)
	assert.Len(t, store.pools, 2)
}

func TestSyncFetchFailure(t *testing.T) {
	feed := &fakeFeed{err: errors.New("connection refused")}
	store := &fakeStore{}
	svc := newTestService(store, feed)

	_, err := svc.Sync(context.Background(), 0)

	assert.ErrorIs(t, err, ErrExternalFetch)
	assert.Empty(t, store.pools)
}

func TestRemoveDuplicatesKeepsEarliest(t *testing.T) {
	store := &fakeStore{pools: []storages.Pool{
		{ID: 1, Name: "aave-v3 USDC", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Name: "aave-v3 USDC", CreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 3, Name: "curve 3pool", CreatedAt: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
	}, nextID: 3}
	svc := newTestService(store, &fakeFeed{})

	removed, err := svc.RemoveDuplicates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []int64{2}, store.deleted)
	require.Len(t, store.pools, 2)
	assert.Equal(t, int64(1), store.pools[0].ID)
}

func TestTopPoolsUsesCache(t *testing.T) {
	feed := &fakeFeed{listings: []llama.ListedPool{
		{Pool: "a", Chain: "Base", Project: "one", Symbol: "A", TvlUsd: 1000, APY: 5},
		{Pool: "b", Chain: "Base", Project: "two", Symbol: "B", TvlUsd: 1000, APY: 50},
		{Pool: "c", Chain: "Base", Project: "three", Symbol: "C", TvlUsd: 1000, APY: 25},
	}}
	svc := newTestService(&fakeStore{}, feed)

	first, err := svc.TopPools(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	// Сортировка по APY по убыванию
	assert.Equal(t, "two B", first[0].Name)
	assert.Equal(t, "three C", first[1].Name)

	// Повторный вызов обслуживается из кеша
	_, err = svc.TopPools(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.calls)
}

func TestSchedulerRunsInitialSyncAndTicks(t *testing.T) {
	feed := &fakeFeed{}
	svc := newTestService(&fakeStore{}, feed)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	ticks := make(chan time.Time)
	scheduler := NewScheduler(svc, time.Hour, 10, logger).WithTicks(ticks)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	// Первичная синхронизация при старте
	assert.Eventually(t, func() bool { return feed.calls >= 1 }, time.Second, 5*time.Millisecond)

	// Тик фейковых часов запускает следующий цикл
	ticks <- time.Now()
	assert.Eventually(t, func() bool { return feed.calls >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}

func TestNormalizeBuildsNameAndDescription(t *testing.T) {
	p := normalize(llama.ListedPool{
		Pool:      "abc-123",
		Chain:     "Base",
		Project:   "aerodrome",
		Symbol:    "WETH-USDC",
		TvlUsd:    2500000,
		APY:       18.5,
		APYBase:   12.1,
		APYReward: 6.4,
	})

	assert.Equal(t, "aerodrome WETH-USDC", p.Name)
	assert.Contains(t, p.Description, "Pool ID: abc-123")
	assert.Contains(t, p.Description, "TVL: $2.50M")
	assert.Contains(t, p.Description, "Base APY: 12.10%")
}
