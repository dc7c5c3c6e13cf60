package reschedule_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByToken(ctx context.Context, token string) (*domain.Appointment, error)
	Reschedule(ctx context.Context, id int64, date time.Time, startTime types.TimeString) error
}

// AvailabilityChecker интерфейс движка доступности
type AvailabilityChecker interface {
	IsSlotAvailableForService(ctx context.Context, date time.Time, slotTime types.TimeString, serviceID int64, excludeSessionID string, excludeAppointmentID *int64) bool
	InvalidateDate(ctx context.Context, date time.Time)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
