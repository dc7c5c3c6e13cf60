package create_appointment

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input")

	// ErrInvalidDate возвращается, когда дата записи в прошлом
	ErrInvalidDate = errors.New("create_appointment: date is in the past")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrSlotNotAvailable возвращается, когда слот занят или недоступен
	ErrSlotNotAvailable = errors.New("create_appointment: slot is not available")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("create_appointment: internal error")
)
