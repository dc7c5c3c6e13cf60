package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

const cleanupSchedule = "@every 5m"

// BlockCleaner интерфейс менеджера временных блокировок
type BlockCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Scheduler фоновые задачи сервиса
// Единственная задача - уборка истёкших временных блокировок;
// expiry-фильтры в запросах держат данные корректными между запусками
type Scheduler struct {
	cron    *cron.Cron
	cleaner BlockCleaner
	metrics *metrics.Metrics // может быть nil
	logger  Logger
}

// NewScheduler создает планировщик фоновых задач
func NewScheduler(cleaner BlockCleaner, m *metrics.Metrics, logger Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		cleaner: cleaner,
		metrics: m,
		logger:  logger,
	}
}

// Start регистрирует и запускает задачи
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(cleanupSchedule, s.runCleanup); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Background scheduler started (cleanup %s)", cleanupSchedule)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущих задач
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Background scheduler stopped")
}

func (s *Scheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.cleaner.CleanupExpired(ctx)
	if err != nil {
		s.logger.Error("Cleanup job failed: %v", err)
		return
	}
	if s.metrics != nil && deleted > 0 {
		s.metrics.TempBlocksCleanedTotal.WithLabelValues("cron").Add(float64(deleted))
	}
}
