package availability

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/cache"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Engine движок доступности слотов
//
// Явно собранный компонент без глобального состояния: хранилища, кеш и часы
// инжектируются конструктором. Все запросы пересчитывают расписание дня
// из хранилища; единственное стоячее состояние - внешний кеш с TTL
type Engine struct {
	builder      ScheduleBuilder
	apptRepo     AppointmentRepository
	blockRepo    TempBlockRepository
	serviceRepo  ServiceRepository
	cache        Cache // может быть nil - кеширование выключено
	timeProvider TimeProvider
	logger       Logger
}

// NewEngine создает движок доступности
func NewEngine(
	builder ScheduleBuilder,
	apptRepo AppointmentRepository,
	blockRepo TempBlockRepository,
	serviceRepo ServiceRepository,
	availabilityCache Cache,
	logger Logger,
) *Engine {
	return &Engine{
		builder:      builder,
		apptRepo:     apptRepo,
		blockRepo:    blockRepo,
		serviceRepo:  serviceRepo,
		cache:        availabilityCache,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// ListAvailableSlots возвращает доступность всех слотов сетки на дату
//
// excludeSessionID - сессия запрашивающего: её собственная временная
// блокировка не считается занятой (повторный выбор слота работает).
//
// Движок fail-closed: любая ошибка чтения хранилища логируется и даёт
// "нет доступных слотов" вместо ошибки наверх. Результат кешируется
// на AvailabilityCacheTTL для пары (дата, сессия)
func (e *Engine) ListAvailableSlots(ctx context.Context, date time.Time, excludeSessionID string) []SlotAvailability {
	if cached, ok := e.cacheGet(ctx, date, excludeSessionID); ok {
		return cached
	}

	result := e.computeDay(ctx, date, excludeSessionID)

	e.cacheSet(ctx, date, excludeSessionID, result)
	return result
}

// IsSlotAvailableForService проверяет, влезает ли услуга в слот:
// все ceil(duration/30) последовательных слотов от указанного времени
// должны быть открыты и не удержаны чужой временной блокировкой
//
// excludeAppointmentID исключает одну запись из расчёта занятости -
// используется при валидации переноса этой же записи. Запись убирается
// из проекции целиком: при переносе не мешают ни её занятые слоты,
// ни порождённые ею буферы.
//
// Проверка авторитетна: кеш не читается, ошибки хранилища дают false
// (fail-closed, никогда fail-open)
func (e *Engine) IsSlotAvailableForService(
	ctx context.Context,
	date time.Time,
	slotTime types.TimeString,
	serviceID int64,
	excludeSessionID string,
	excludeAppointmentID *int64,
) bool {
	if !domain.IsOnGrid(slotTime) {
		return false
	}

	svc, err := e.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		e.logger.Warn("IsSlotAvailableForService: failed to get service id=%d: %v", serviceID, err)
		return false
	}

	services, err := e.serviceRepo.List(ctx)
	if err != nil {
		e.logger.Error("IsSlotAvailableForService: failed to list services: %v", err)
		return false
	}

	appts, err := e.apptRepo.GetByDate(ctx, date, true)
	if err != nil {
		e.logger.Error("IsSlotAvailableForService: failed to get appointments for %s: %v",
			date.Format(domain.DateFormat), err)
		return false
	}

	now := e.timeProvider.Now()
	blocks, err := e.blockRepo.GetActiveByDate(ctx, date, now)
	if err != nil {
		e.logger.Error("IsSlotAvailableForService: failed to get temporary blocks for %s: %v",
			date.Format(domain.DateFormat), err)
		return false
	}

	if excludeAppointmentID != nil {
		appts = withoutAppointment(appts, *excludeAppointmentID)
	}

	day := e.builder.BuildDay(ctx, date)
	projectAppointments(&day, appts, services)
	held := heldSlots(blocks, excludeSessionID, now)

	startIdx := day.SlotIndex(slotTime)
	needed := svc.SlotsNeeded()

	for i := startIdx; i < startIdx+needed; i++ {
		if i >= len(day.Slots) {
			// Услуга вылезает за конец сетки
			return false
		}
		slot := day.Slots[i]

		if slot.State != domain.SlotOpen {
			return false
		}
		if held[slot.Time] {
			return false
		}
	}

	return true
}

// withoutAppointment возвращает список записей без записи с указанным id
func withoutAppointment(appts []*domain.Appointment, id int64) []*domain.Appointment {
	kept := make([]*domain.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	return kept
}

// InvalidateDate сбрасывает кеш доступности даты
// Должна вызываться после каждой мутации, влияющей на дату
func (e *Engine) InvalidateDate(ctx context.Context, date time.Time) {
	if e.cache == nil {
		return
	}
	if err := e.cache.InvalidateDate(ctx, date); err != nil {
		e.logger.Warn("InvalidateDate: failed to invalidate cache for %s: %v",
			date.Format(domain.DateFormat), err)
	}
}

// computeDay пересчитывает доступность дня из хранилища
func (e *Engine) computeDay(ctx context.Context, date time.Time, excludeSessionID string) []SlotAvailability {
	day := e.builder.BuildDay(ctx, date)

	appts, err := e.apptRepo.GetByDate(ctx, date, true)
	if err != nil {
		e.logger.Error("ListAvailableSlots: failed to get appointments for %s: %v",
			date.Format(domain.DateFormat), err)
		return failClosedDay()
	}

	services, err := e.serviceRepo.List(ctx)
	if err != nil {
		e.logger.Error("ListAvailableSlots: failed to list services: %v", err)
		return failClosedDay()
	}

	now := e.timeProvider.Now()
	blocks, err := e.blockRepo.GetActiveByDate(ctx, date, now)
	if err != nil {
		e.logger.Error("ListAvailableSlots: failed to get temporary blocks for %s: %v",
			date.Format(domain.DateFormat), err)
		return failClosedDay()
	}

	projectAppointments(&day, appts, services)
	held := heldSlots(blocks, excludeSessionID, now)

	result := make([]SlotAvailability, len(day.Slots))
	for i, slot := range day.Slots {
		info := SlotAvailability{
			Time:                 slot.Time,
			IsBooked:             slot.State == domain.SlotBooked,
			IsBuffer:             slot.State.IsBuffer(),
			IsTemporarilyBlocked: held[slot.Time],
		}
		info.IsAvailable = slot.State == domain.SlotOpen && !info.IsTemporarilyBlocked

		if info.IsAvailable {
			info.ServiceAvailability = e.serviceFit(&day, held, i, services)
		}

		result[i] = info
	}

	return result
}

// serviceFit вычисляет для каждой услуги, влезает ли она начиная со слота idx
func (e *Engine) serviceFit(day *domain.DaySchedule, held map[types.TimeString]bool, idx int, services []*domain.Service) map[int64]bool {
	fit := make(map[int64]bool, len(services))

	for _, svc := range services {
		needed := svc.SlotsNeeded()
		ok := true
		for i := idx; i < idx+needed; i++ {
			if i >= len(day.Slots) || day.Slots[i].State != domain.SlotOpen || held[day.Slots[i].Time] {
				ok = false
				break
			}
		}
		fit[svc.ID] = ok
	}

	return fit
}

// heldSlots возвращает времена слотов, удержанных чужими временными блокировками
func heldSlots(blocks []*domain.TemporaryBlock, excludeSessionID string, now time.Time) map[types.TimeString]bool {
	held := make(map[types.TimeString]bool)
	for _, b := range blocks {
		if b.IsOwnedBy(excludeSessionID) {
			continue
		}
		// Репозиторий фильтрует по expires_at, но при индуцированных часах
		// (тесты, дрейф) перепроверяем
		if b.IsExpired(now) {
			continue
		}
		held[b.Time] = true
	}
	return held
}

// failClosedDay возвращает сетку, где ни один слот не доступен
func failClosedDay() []SlotAvailability {
	times := domain.GridTimes()
	result := make([]SlotAvailability, len(times))
	for i, t := range times {
		result[i] = SlotAvailability{Time: t}
	}
	return result
}

func (e *Engine) cacheGet(ctx context.Context, date time.Time, sessionID string) ([]SlotAvailability, bool) {
	if e.cache == nil {
		return nil, false
	}

	payload, err := e.cache.Get(ctx, date, sessionID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			e.logger.Warn("ListAvailableSlots: cache read failed for %s: %v",
				date.Format(domain.DateFormat), err)
		}
		return nil, false
	}

	var result []SlotAvailability
	if err := json.Unmarshal(payload, &result); err != nil {
		e.logger.Warn("ListAvailableSlots: corrupted cache payload for %s: %v",
			date.Format(domain.DateFormat), err)
		return nil, false
	}

	return result, true
}

func (e *Engine) cacheSet(ctx context.Context, date time.Time, sessionID string, result []SlotAvailability) {
	if e.cache == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		e.logger.Warn("ListAvailableSlots: failed to marshal cache payload: %v", err)
		return
	}
	if err := e.cache.Set(ctx, date, sessionID, payload); err != nil {
		e.logger.Warn("ListAvailableSlots: cache write failed for %s: %v",
			date.Format(domain.DateFormat), err)
	}
}
