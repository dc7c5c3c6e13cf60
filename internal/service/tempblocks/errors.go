package tempblocks

import "errors"

var (
	// ErrSlotNotAvailable возвращается, когда слот нельзя заблокировать
	ErrSlotNotAvailable = errors.New("tempblocks: slot is not available")

	// ErrNoActiveBlock возвращается при продлении без активной блокировки
	ErrNoActiveBlock = errors.New("tempblocks: session has no active block")

	// ErrInternal возвращается при внутренних ошибках менеджера
	ErrInternal = errors.New("tempblocks: internal error")
)
