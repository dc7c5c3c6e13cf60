package check_slot

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type AvailabilityEngine interface {
	IsSlotAvailableForService(ctx context.Context, date time.Time, slotTime types.TimeString, serviceID int64, excludeSessionID string, excludeAppointmentID *int64) bool
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
