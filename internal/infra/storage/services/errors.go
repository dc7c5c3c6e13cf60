package services

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("services.repository: service not found")

	// ErrServiceReferenced возвращается при попытке удалить услугу,
	// на которую ссылаются записи
	ErrServiceReferenced = errors.New("services.repository: service is referenced by appointments")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("services.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("services.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("services.repository: failed to scan row")
)
