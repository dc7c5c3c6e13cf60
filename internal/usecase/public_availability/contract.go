package public_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ScheduleBuilder интерфейс построителя базового расписания дня
type ScheduleBuilder interface {
	BuildDay(ctx context.Context, date time.Time) domain.DaySchedule
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByDateRange(ctx context.Context, from, to time.Time, activeOnly bool) ([]*domain.Appointment, error)
}

// TempBlockRepository интерфейс репозитория временных блокировок
type TempBlockRepository interface {
	GetActiveByDateRange(ctx context.Context, from, to time.Time, now time.Time) ([]*domain.TemporaryBlock, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
