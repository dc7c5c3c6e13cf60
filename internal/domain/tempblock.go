package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// TemporaryBlock временная блокировка слота (soft lock)
// Удерживает слот за анонимной сессией на время заполнения формы.
// У сессии может быть не больше одной активной блокировки;
// блокировка истекает через TempBlockTTL, если не продлена
type TemporaryBlock struct {
	ID        string // uuid
	Date      time.Time
	Time      types.TimeString
	SessionID string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired возвращает true, если блокировка истекла на момент now
func (b *TemporaryBlock) IsExpired(now time.Time) bool {
	return !b.ExpiresAt.After(now)
}

// IsOwnedBy возвращает true, если блокировка принадлежит сессии
// Владелец всегда видит свой слот как доступный
func (b *TemporaryBlock) IsOwnedBy(sessionID string) bool {
	return b.SessionID == sessionID
}
