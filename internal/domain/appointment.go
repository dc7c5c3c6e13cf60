package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentStatus статус записи
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Appointment запись клиента на услугу
// Жизненный цикл: pending -> confirmed/cancelled -> completed -> archived
// Переходы статусов наблюдаются внешней подсистемой уведомлений
type Appointment struct {
	ID        int64
	ServiceID int64

	// Контакты клиента (анонимная сессия, данные из формы)
	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	// Желаемые дата и время из формы бронирования
	PreferredDate time.Time
	PreferredTime types.TimeString

	// Подтверждённые дата и время (устанавливаются при подтверждении)
	ConfirmedDate *time.Time
	ConfirmedTime *types.TimeString

	Status           AppointmentStatus
	RescheduleCount  int
	ReservationToken string
	IsArchived       bool

	Notes              *string
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingDate возвращает действующую дату записи
// (подтверждённую, если есть, иначе желаемую)
func (a *Appointment) BookingDate() time.Time {
	if a.ConfirmedDate != nil {
		return *a.ConfirmedDate
	}
	return a.PreferredDate
}

// StartTime возвращает действующее время начала записи
func (a *Appointment) StartTime() types.TimeString {
	if a.ConfirmedTime != nil {
		return *a.ConfirmedTime
	}
	return a.PreferredTime
}

// IsActive возвращает true, если запись занимает слоты при расчёте доступности
func (a *Appointment) IsActive() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeCancelled возвращает true, если запись можно отменить
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeConfirmed возвращает true, если запись можно подтвердить
func (a *Appointment) CanBeConfirmed() bool {
	return a.Status == StatusPending
}

// CanBeRescheduled возвращает true, если запись можно перенести
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeCompleted возвращает true, если запись можно отметить выполненной
func (a *Appointment) CanBeCompleted() bool {
	return a.Status == StatusConfirmed
}

// CanBeArchived возвращает true, если запись можно архивировать
// Архив - терминальное состояние, доступен только из cancelled/completed
func (a *Appointment) CanBeArchived() bool {
	return !a.IsArchived && (a.Status == StatusCancelled || a.Status == StatusCompleted)
}

// IsValidStatus проверяет, что строка - допустимый статус записи
func IsValidStatus(s string) bool {
	switch AppointmentStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}
