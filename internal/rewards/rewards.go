// Package rewards реализует расчет наград за стейкинг.
//
// Начисление линейное, по секундам, без капитализации: реинвестирование
// требует claim и нового stake.
package rewards

import (
	"time"

	"yield-farm-api/internal/storages"
)

// secondsPerYear количество секунд в году (365 дней)
const secondsPerYear = 365 * 24 * 3600

// PerSecond возвращает награду за одну секунду для заданной суммы и APY (в процентах)
func PerSecond(amount, apy float64) float64 {
	return amount * apy / (secondsPerYear * 100)
}

// Pending возвращает накопленную награду стейка на момент now.
//
// Для неактивного стейка всегда 0. Если якорь last_reward_calculation
// оказался в будущем (рассинхронизация часов), прошедшее время
// ограничивается нулем, отрицательная награда невозможна.
func Pending(stake *storages.Stake, apy float64, now time.Time) float64 {
	if stake == nil || stake.Status != storages.StakeStatusActive {
		return 0
	}

	elapsed := now.Sub(stake.LastRewardCalculation).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	return PerSecond(stake.Amount, apy) * elapsed
}
