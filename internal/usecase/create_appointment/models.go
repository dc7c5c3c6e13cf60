package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request запрос на создание записи
type Request struct {
	ServiceID     int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Date          time.Time
	StartTime     types.TimeString
	Notes         *string
	SessionID     string
}

// Response ответ с данными созданной записи
type Response struct {
	ID               int64
	ServiceID        int64
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	Date             time.Time
	StartTime        types.TimeString
	Status           string
	ReservationToken string
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
