package update_appointment_status

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type AppointmentService interface {
	Complete(ctx context.Context, id int64) (*domain.Appointment, error)
	Archive(ctx context.Context, id int64) (*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
