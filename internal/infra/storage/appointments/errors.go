package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointments.repository: appointment not found")

	// ErrSlotTaken возвращается при нарушении уникального индекса
	// (date, time) среди активных записей - слот уже занят другой записью.
	// Это жёсткая гарантия at-most-one на стороне БД
	ErrSlotTaken = errors.New("appointments.repository: slot already taken by another appointment")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointments.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointments.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointments.repository: failed to scan row")
)
