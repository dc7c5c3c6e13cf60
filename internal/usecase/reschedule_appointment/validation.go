package reschedule_appointment

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	hasID := req.AppointmentID != nil
	hasToken := req.ReservationToken != nil && *req.ReservationToken != ""
	if hasID == hasToken {
		return fmt.Errorf("%w: exactly one of appointmentID or reservationToken is required", ErrInvalidInput)
	}
	if hasID && *req.AppointmentID <= 0 {
		return fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}
	if !domain.IsOnGrid(req.StartTime) {
		return fmt.Errorf("%w: startTime must be on the %d-minute grid", ErrInvalidInput, domain.SlotDurationMinutes)
	}

	return nil
}

// validateDate проверяет, что новая дата не в прошлом
func validateDate(date, now time.Time) error {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if dateOnly.Before(nowOnly) {
		return ErrInvalidDate
	}
	return nil
}
