package get_appointment

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type AppointmentService interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByToken(ctx context.Context, token string) (*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
