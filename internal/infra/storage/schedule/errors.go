package schedule

import "errors"

var (
	// ErrTemplateNotFound возвращается, когда шаблон расписания не найден
	ErrTemplateNotFound = errors.New("schedule.repository: template not found")

	// ErrAssignmentNotFound возвращается, когда для месяца нет привязки шаблона
	ErrAssignmentNotFound = errors.New("schedule.repository: template assignment not found")

	// ErrMonthlyScheduleNotFound возвращается, когда месячное расписание отсутствует
	ErrMonthlyScheduleNotFound = errors.New("schedule.repository: monthly schedule not found")

	// ErrBlockedSlotNotFound возвращается, когда глобальная блокировка не найдена
	ErrBlockedSlotNotFound = errors.New("schedule.repository: blocked slot not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")

	// ErrMarshal возвращается при ошибке (де)сериализации jsonb полей
	ErrMarshal = errors.New("schedule.repository: failed to marshal jsonb payload")
)
