package reschedule_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request запрос на перенос записи
// Запись ищется по ID (админский доступ) либо по токену резервации
// (доступ клиента) - указывается ровно одно из двух
type Request struct {
	AppointmentID    *int64
	ReservationToken *string
	Date             time.Time
	StartTime        types.TimeString
	SessionID        string
}

// Response ответ с данными перенесённой записи
type Response struct {
	ID              int64
	ServiceID       int64
	Date            time.Time
	StartTime       types.TimeString
	Status          string
	RescheduleCount int
	UpdatedAt       time.Time
}
