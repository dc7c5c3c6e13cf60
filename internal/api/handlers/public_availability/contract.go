package public_availability

import (
	"context"

	publicAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/public_availability"
)

type PublicAvailabilityUseCase interface {
	Execute(ctx context.Context, req *publicAvailability.Request) (*publicAvailability.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
