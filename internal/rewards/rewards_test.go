package rewards

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"yield-farm-api/internal/storages"
)

func activeStake(amount float64, anchor time.Time) *storages.Stake {
	return &storages.Stake{
		ID:                    1,
		UserID:                1,
		PoolID:                1,
		Amount:                amount,
		Status:                storages.StakeStatusActive,
		StakedAt:              anchor,
		LastRewardCalculation: anchor,
	}
}

func TestPendingZeroAPY(t *testing.T) {
	anchor := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	stake := activeStake(1000, anchor)

	for _, elapsed := range []time.Duration{0, time.Second, time.Hour, 24 * 365 * time.Hour} {
		assert.Zero(t, Pending(stake, 0, anchor.Add(elapsed)))
	}
}

func TestPendingFullYear(t *testing.T) {
	anchor := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	stake := activeStake(1000, anchor)

	// 1000 под 10% годовых ровно через год дает ~100
	now := anchor.Add(365 * 24 * time.Hour)
	assert.InDelta(t, 100.0, Pending(stake, 10, now), 1e-9)
}

func TestPendingMonotonic(t *testing.T) {
	anchor := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	stake := activeStake(500, anchor)

	prev := 0.0
	for i := 0; i < 48; i++ {
		now := anchor.Add(time.Duration(i) * time.Hour)
		pending := Pending(stake, 12.5, now)
		assert.GreaterOrEqual(t, pending, prev)
		prev = pending
	}
}

func TestPendingClockSkewClamped(t *testing.T) {
	anchor := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	stake := activeStake(1000, anchor)

	// Якорь в будущем не должен давать отрицательную награду
	assert.Zero(t, Pending(stake, 10, anchor.Add(-time.Hour)))
}

func TestPendingInactiveStake(t *testing.T) {
	anchor := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	stake := activeStake(1000, anchor)
	stake.Status = storages.StakeStatusWithdrawn

	assert.Zero(t, Pending(stake, 10, anchor.Add(time.Hour)))
}

func TestPendingNilStake(t *testing.T) {
	assert.Zero(t, Pending(nil, 10, time.Now()))
}

func TestPerSecond(t *testing.T) {
	// 1000 под 10%: 100 в год, в пересчете на секунду
	assert.InDelta(t, 100.0/(365*24*3600), PerSecond(1000, 10), 1e-15)
}
