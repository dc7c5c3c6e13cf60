package public_availability

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("public_availability: invalid input")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("public_availability: internal error")
)
