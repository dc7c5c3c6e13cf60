package tempblocks

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// BlockRepository интерфейс репозитория временных блокировок
type BlockRepository interface {
	Create(ctx context.Context, block *domain.TemporaryBlock) (*domain.TemporaryBlock, error)
	GetActiveBySession(ctx context.Context, sessionID string, now time.Time) (*domain.TemporaryBlock, error)
	ExtendBySession(ctx context.Context, sessionID string, now, expiresAt time.Time) error
	DeleteBySession(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AvailabilityChecker интерфейс движка доступности
// Блокировка ставится только на слот, куда влезает хотя бы самая
// короткая услуга каталога
type AvailabilityChecker interface {
	IsSlotAvailableForService(ctx context.Context, date time.Time, slotTime types.TimeString, serviceID int64, excludeSessionID string, excludeAppointmentID *int64) bool
	InvalidateDate(ctx context.Context, date time.Time)
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	List(ctx context.Context) ([]*domain.Service, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
