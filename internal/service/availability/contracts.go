package availability

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
	GetByDate(ctx context.Context, date time.Time, activeOnly bool) ([]*domain.Appointment, error)
}

// TempBlockRepository интерфейс репозитория временных блокировок
type TempBlockRepository interface {
	GetActiveByDate(ctx context.Context, date time.Time, now time.Time) ([]*domain.TemporaryBlock, error)
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	List(ctx context.Context) ([]*domain.Service, error)
}

// Cache интерфейс кеша ответов запроса доступности
// Реализация - Redis; nil-кеш допустим (кеширование выключено)
type Cache interface {
	Get(ctx context.Context, date time.Time, sessionID string) ([]byte, error)
	Set(ctx context.Context, date time.Time, sessionID string, payload []byte) error
	InvalidateDate(ctx context.Context, date time.Time) error
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
