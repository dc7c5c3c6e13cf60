package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Builder строит базовое расписание дня: какие слоты сетки открыты
// администратором с учётом шаблона, привязок, месячных и глобальных блокировок
//
// Builder никогда не возвращает ошибку наверх: любая проблема с
// конфигурацией или хранилищем деградирует в "нет открытых слотов",
// чтобы форма бронирования показывала пустой день, а не ошибку
type Builder struct {
	repo   ScheduleRepository
	logger Logger
}

// NewBuilder создает построитель расписания дня
func NewBuilder(repo ScheduleRepository, logger Logger) *Builder {
	return &Builder{repo: repo, logger: logger}
}

// BuildDay возвращает состояние каждого слота сетки на дату: open или closed
//
// Алгоритм:
//  1. Разрешаем привязку шаблона для (год, месяц): месячная привязка
//     приоритетнее годовой; без привязки день полностью закрыт
//     (неявного дефолтного шаблона нет)
//  2. Берём времена слотов шаблона для дня недели
//  3. Если дата закрыта целиком (all-day блокировка месяца или глобальная
//     блокировка без временного окна) - все слоты закрыты
//  4. Иначе слот открыт, если не попадает в месячную блокировку конкретного
//     времени и не попадает в окно глобальной блокировки
func (b *Builder) BuildDay(ctx context.Context, date time.Time) domain.DaySchedule {
	day := domain.NewDaySchedule(date)
	year, month := date.Year(), int(date.Month())

	// 1. Привязка шаблона
	assignment, err := b.repo.GetAssignmentForMonth(ctx, year, month)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrAssignmentNotFound) {
			b.logger.Info("BuildDay: no template assignment for %d-%02d, day is closed", year, month)
		} else {
			b.logger.Error("BuildDay: failed to resolve assignment for %d-%02d: %v", year, month, err)
		}
		return day
	}

	tpl, err := b.repo.GetTemplateByID(ctx, assignment.TemplateID)
	if err != nil {
		b.logger.Error("BuildDay: failed to load template id=%d: %v", assignment.TemplateID, err)
		return day
	}

	// 2. Времена шаблона для дня недели
	templateTimes := tpl.Schedule.TimesFor(date.Weekday())
	if len(templateTimes) == 0 {
		return day
	}

	// Месячное расписание может отсутствовать - это не ошибка конфигурации
	var monthlyBlocks []domain.MonthlyBlockedSlot
	monthly, err := b.repo.GetMonthlySchedule(ctx, year, month)
	if err != nil && !errors.Is(err, scheduleRepo.ErrMonthlyScheduleNotFound) {
		b.logger.Error("BuildDay: failed to load monthly schedule %d-%02d: %v", year, month, err)
		return day
	}
	if monthly != nil {
		monthlyBlocks = monthly.BlockedSlots
	}

	globalBlocks, err := b.repo.GetBlockedSlotsForDate(ctx, date)
	if err != nil {
		b.logger.Error("BuildDay: failed to load blocked slots for %s: %v", date.Format(domain.DateFormat), err)
		return day
	}

	// 3. Полное закрытие дня
	if dayFullyBlocked(date, monthlyBlocks, globalBlocks) {
		return day
	}

	// 4. Открываем слоты шаблона, не попавшие под блокировки
	for _, t := range templateTimes {
		idx := day.SlotIndex(t)
		if idx < 0 {
			// Время вне каталога сетки - игнорируем
			b.logger.Warn("BuildDay: template id=%d contains off-grid time %s", tpl.ID, t)
			continue
		}
		if timeBlocked(date, t, monthlyBlocks, globalBlocks) {
			continue
		}
		day.Slots[idx].State = domain.SlotOpen
	}

	return day
}

// dayFullyBlocked проверяет all-day блокировки даты
func dayFullyBlocked(date time.Time, monthly []domain.MonthlyBlockedSlot, global []*domain.BlockedSlot) bool {
	for i := range monthly {
		if monthly[i].AllDay && monthly[i].CoversDate(date) {
			return true
		}
	}
	for _, b := range global {
		if b.CoversDate(date) && b.BlocksWholeDay() {
			return true
		}
	}
	return false
}

// timeBlocked проверяет блокировки конкретного времени слота
func timeBlocked(date time.Time, t types.TimeString, monthly []domain.MonthlyBlockedSlot, global []*domain.BlockedSlot) bool {
	for i := range monthly {
		blk := &monthly[i]
		if blk.AllDay || blk.Time == nil {
			continue
		}
		if blk.CoversDate(date) && *blk.Time == t {
			return true
		}
	}
	for _, b := range global {
		if !b.CoversDate(date) || b.BlocksWholeDay() {
			continue
		}
		if b.CoversTime(t) {
			return true
		}
	}
	return false
}
