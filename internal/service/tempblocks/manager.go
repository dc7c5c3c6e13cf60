package tempblocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	storage "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/tempblocks"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Manager управляет временными блокировками слотов
//
// Блокировка - мягкая защита от гонки двух посетителей за один слот:
// пока один заполняет форму, второй видит слот занятым. Жёсткая
// гарантия остаётся за уникальным индексом БД при создании записи
type Manager struct {
	blockRepo    BlockRepository
	checker      AvailabilityChecker
	serviceRepo  ServiceRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewManager создает менеджер временных блокировок
func NewManager(blockRepo BlockRepository, checker AvailabilityChecker, serviceRepo ServiceRepository, logger Logger) *Manager {
	return &Manager{
		blockRepo:    blockRepo,
		checker:      checker,
		serviceRepo:  serviceRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Create ставит блокировку слота за сессией
//
// У сессии не больше одной активной блокировки: прежняя снимается,
// так что выбор нового слота в интерфейсе заменяет старый.
// Слот должен вмещать хотя бы самую короткую услугу каталога
func (m *Manager) Create(ctx context.Context, sessionID string, date time.Time, slotTime types.TimeString) (*domain.TemporaryBlock, error) {
	now := m.timeProvider.Now()

	// 1. Попутная уборка истёкших блокировок
	if _, err := m.blockRepo.DeleteExpired(ctx, now); err != nil {
		m.logger.Warn("Create: failed to delete expired blocks: %v", err)
	}

	// 2. Снимаем прежнюю блокировку этой сессии (и сбрасываем кеш её даты)
	if prev, err := m.blockRepo.GetActiveBySession(ctx, sessionID, now); err == nil {
		if err := m.blockRepo.DeleteBySession(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("%w: Create - release previous block: %v", ErrInternal, err)
		}
		m.checker.InvalidateDate(ctx, prev.Date)
	} else if !errors.Is(err, storage.ErrBlockNotFound) {
		return nil, fmt.Errorf("%w: Create - get active block: %v", ErrInternal, err)
	}

	// 3. Проверяем, что слот пригоден хотя бы для самой короткой услуги
	services, err := m.serviceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - list services: %v", ErrInternal, err)
	}
	shortest := domain.MinDurationService(services)
	if shortest == nil {
		return nil, ErrSlotNotAvailable
	}
	if !m.checker.IsSlotAvailableForService(ctx, date, slotTime, shortest.ID, sessionID, nil) {
		return nil, ErrSlotNotAvailable
	}

	// 4. Создаем блокировку
	block := &domain.TemporaryBlock{
		ID:        uuid.NewString(),
		Date:      date,
		Time:      slotTime,
		SessionID: sessionID,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.TempBlockTTL),
	}
	created, err := m.blockRepo.Create(ctx, block)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - create block: %v", ErrInternal, err)
	}

	m.checker.InvalidateDate(ctx, date)
	return created, nil
}

// Extend продлевает активную блокировку сессии ещё на TTL от текущего момента
func (m *Manager) Extend(ctx context.Context, sessionID string) (*domain.TemporaryBlock, error) {
	now := m.timeProvider.Now()

	err := m.blockRepo.ExtendBySession(ctx, sessionID, now, now.Add(domain.TempBlockTTL))
	if errors.Is(err, storage.ErrBlockNotFound) {
		return nil, ErrNoActiveBlock
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Extend - extend block: %v", ErrInternal, err)
	}

	block, err := m.blockRepo.GetActiveBySession(ctx, sessionID, now)
	if err != nil {
		return nil, fmt.Errorf("%w: Extend - get extended block: %v", ErrInternal, err)
	}

	return block, nil
}

// Release снимает блокировку сессии; идемпотентна
func (m *Manager) Release(ctx context.Context, sessionID string) error {
	now := m.timeProvider.Now()

	// Дату узнаём до удаления, чтобы сбросить кеш; отсутствие блокировки - не ошибка
	block, err := m.blockRepo.GetActiveBySession(ctx, sessionID, now)
	if err != nil && !errors.Is(err, storage.ErrBlockNotFound) {
		return fmt.Errorf("%w: Release - get active block: %v", ErrInternal, err)
	}

	if err := m.blockRepo.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: Release - delete blocks: %v", ErrInternal, err)
	}

	if block != nil {
		m.checker.InvalidateDate(ctx, block.Date)
	}
	return nil
}

// CleanupExpired удаляет истёкшие блокировки; вызывается фоновой задачей
// Возвращает количество удалённых блокировок
func (m *Manager) CleanupExpired(ctx context.Context) (int64, error) {
	deleted, err := m.blockRepo.DeleteExpired(ctx, m.timeProvider.Now())
	if err != nil {
		return 0, fmt.Errorf("%w: CleanupExpired - delete expired: %v", ErrInternal, err)
	}
	if deleted > 0 {
		m.logger.Info("CleanupExpired: removed %d expired temporary blocks", deleted)
	}
	return deleted, nil
}
