package tempblocks

import "errors"

var (
	// ErrBlockNotFound возвращается, когда у сессии нет активной блокировки
	ErrBlockNotFound = errors.New("tempblocks.repository: temporary block not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("tempblocks.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("tempblocks.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("tempblocks.repository: failed to scan row")
)
