package reschedule_appointment

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_appointment: invalid input")

	// ErrInvalidDate возвращается, когда новая дата в прошлом
	ErrInvalidDate = errors.New("reschedule_appointment: date is in the past")

	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("reschedule_appointment: appointment not found")

	// ErrNotReschedulable возвращается, когда статус записи не допускает перенос
	ErrNotReschedulable = errors.New("reschedule_appointment: appointment cannot be rescheduled")

	// ErrSlotNotAvailable возвращается, когда новый слот занят или недоступен
	ErrSlotNotAvailable = errors.New("reschedule_appointment: slot is not available")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("reschedule_appointment: internal error")
)
