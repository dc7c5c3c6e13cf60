package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ScheduleRepository интерфейс репозитория сущностей расписания
type ScheduleRepository interface {
	GetAssignmentForMonth(ctx context.Context, year, month int) (*domain.TemplateAssignment, error)
	GetTemplateByID(ctx context.Context, id int64) (*domain.ScheduleTemplate, error)
	GetMonthlySchedule(ctx context.Context, year, month int) (*domain.MonthlySchedule, error)
	GetBlockedSlotsForDate(ctx context.Context, date time.Time) ([]*domain.BlockedSlot, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
