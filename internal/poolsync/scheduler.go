package poolsync

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler запускает цикл синхронизации по расписанию: один раз при старте
// процесса и далее с фиксированным интервалом. Ошибки цикла логируются,
// повтор только на следующем тике, без backoff.
type Scheduler struct {
	service  *Service
	interval time.Duration
	maxPools int
	logger   *logrus.Logger

	// ticks переопределяет источник тиков в тестах; при nil используется
	// time.Ticker с заданным интервалом
	ticks <-chan time.Time
}

// NewScheduler создает новый планировщик синхронизации
func NewScheduler(service *Service, interval time.Duration, maxPools int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		service:  service,
		interval: interval,
		maxPools: maxPools,
		logger:   logger,
	}
}

// WithTicks подменяет источник тиков (для тестов с фейковыми часами)
func (s *Scheduler) WithTicks(ticks <-chan time.Time) *Scheduler {
	s.ticks = ticks
	return s
}

// Run блокирует до отмены контекста
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Infof("Pool sync scheduler started (interval: %s)", s.interval)

	// Первичная синхронизация, чтобы данные были доступны сразу после старта
	s.runOnce(ctx)

	ticks := s.ticks
	if ticks == nil {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Pool sync scheduler stopped")
			return
		case <-ticks:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.service.Sync(ctx, s.maxPools); err != nil {
		s.logger.Errorf("Scheduled pool sync failed: %v", err)
	}
}
