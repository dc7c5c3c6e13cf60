package get_available_slots

import (
	"context"
	"time"

	availability "github.com/m04kA/SMC-AppointmentService/internal/service/availability"
)

type AvailabilityEngine interface {
	ListAvailableSlots(ctx context.Context, date time.Time, excludeSessionID string) []availability.SlotAvailability
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
