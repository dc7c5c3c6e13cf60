package public_availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const defaultRangeDays = 30

// UseCase use case публичной доступности для календаря сайта
//
// Грубый read-path: открытые по расписанию времена без проекции буферов
// плюс сырые списки занятых и удержанных слотов. Ответ рассчитан на
// кеширование CDN, поэтому не зависит от сессии запрашивающего
type UseCase struct {
	builder      ScheduleBuilder
	apptRepo     AppointmentRepository
	blockRepo    TempBlockRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	builder ScheduleBuilder,
	apptRepo AppointmentRepository,
	blockRepo TempBlockRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		builder:      builder,
		apptRepo:     apptRepo,
		blockRepo:    blockRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case публичной доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация и нормализация окна дат
	if req.RangeDays < 0 {
		return nil, fmt.Errorf("%w: rangeDays must not be negative", ErrInvalidInput)
	}
	if req.CacheMode != "" && req.CacheMode != CacheModeShort && req.CacheMode != CacheModeLong {
		return nil, fmt.Errorf("%w: unknown cache mode %q", ErrInvalidInput, req.CacheMode)
	}

	now := uc.timeProvider.Now()
	from, to := resolveWindow(req, now)

	// 2. Открытые времена каждого дня окна
	days := make([]DayAvailability, 0)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		day := uc.builder.BuildDay(ctx, d)
		days = append(days, DayAvailability{
			Date:      d.Format(domain.DateFormat),
			OpenTimes: openTimesOf(day),
		})
	}

	// 3. Активные записи окна (только слот и статус, без данных клиента)
	appts, err := uc.apptRepo.GetByDateRange(ctx, from, to, true)
	if err != nil {
		uc.logger.Error("PublicAvailability: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}
	apptSlots := make([]AppointmentSlot, 0, len(appts))
	for _, a := range appts {
		apptSlots = append(apptSlots, AppointmentSlot{
			Date:   a.BookingDate().Format(domain.DateFormat),
			Time:   a.StartTime(),
			Status: string(a.Status),
		})
	}

	// 4. Активные временные блокировки окна
	blocks, err := uc.blockRepo.GetActiveByDateRange(ctx, from, to, now)
	if err != nil {
		uc.logger.Error("PublicAvailability: failed to get temporary blocks: %v", err)
		return nil, fmt.Errorf("%w: failed to get temporary blocks: %v", ErrInternal, err)
	}
	blocked := make([]BlockedSlotEntry, 0, len(blocks))
	for _, b := range blocks {
		blocked = append(blocked, BlockedSlotEntry{
			Date:      b.Date.Format(domain.DateFormat),
			Time:      b.Time,
			ExpiresAt: b.ExpiresAt,
		})
	}

	return &Response{
		Days:         days,
		Appointments: apptSlots,
		Blocked:      blocked,
		CacheControl: cacheControlFor(req.CacheMode),
	}, nil
}

// resolveWindow возвращает границы окна дат запроса
func resolveWindow(req *Request, now time.Time) (time.Time, time.Time) {
	if req.Date != nil {
		d := *req.Date
		return d, d
	}

	rangeDays := req.RangeDays
	if rangeDays == 0 {
		rangeDays = defaultRangeDays
	}
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 0, rangeDays-1)
}

func openTimesOf(day domain.DaySchedule) []types.TimeString {
	open := make([]types.TimeString, 0)
	for _, slot := range day.Slots {
		if slot.State == domain.SlotOpen {
			open = append(open, slot.Time)
		}
	}
	return open
}

func cacheControlFor(mode string) string {
	if mode == CacheModeLong {
		return cacheControlLong
	}
	return cacheControlShort
}
