package cancel_appointment

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type AppointmentService interface {
	Cancel(ctx context.Context, id int64, reason *string) (*domain.Appointment, error)
	CancelByToken(ctx context.Context, token string, reason *string) (*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
