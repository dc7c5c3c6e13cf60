package appointments

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
	GetByDate(ctx context.Context, date time.Time, activeOnly bool) ([]*domain.Appointment, error)
	GetByDateRange(ctx context.Context, from, to time.Time, activeOnly bool) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	Confirm(ctx context.Context, id int64, date time.Time, startTime types.TimeString) error
	Cancel(ctx context.Context, id int64, reason *string) error
	Archive(ctx context.Context, id int64) error
}

// CacheInvalidator интерфейс сброса кеша доступности
type CacheInvalidator interface {
	InvalidateDate(ctx context.Context, date time.Time)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
