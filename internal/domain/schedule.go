package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// WeeklySchedule недельный шаблон: имя дня недели -> времена открытых слотов
// Ключи - строчные английские имена дней ("monday" ... "sunday"),
// хранится в БД как jsonb
type WeeklySchedule map[string][]types.TimeString

// weekdayKeys соответствие time.Weekday ключам недельного шаблона
var weekdayKeys = map[time.Weekday]string{
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
	time.Sunday:    "sunday",
}

// TimesFor возвращает времена открытых слотов для дня недели
func (w WeeklySchedule) TimesFor(day time.Weekday) []types.TimeString {
	return w[weekdayKeys[day]]
}

// ScheduleTemplate повторяющийся недельный шаблон доступности
type ScheduleTemplate struct {
	ID        int64
	Name      string
	Schedule  WeeklySchedule
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TemplateAssignment привязка шаблона к году или конкретному месяцу
// Month == nil означает привязку на весь год; привязка к месяцу имеет
// приоритет над годовой
type TemplateAssignment struct {
	ID         int64
	TemplateID int64
	Year       int
	Month      *int
}

// MonthlyBlockedSlot блокировка внутри месячного расписания
// Time == nil при AllDay означает блокировку всего дня
type MonthlyBlockedSlot struct {
	Date   string            `json:"date"` // YYYY-MM-DD
	Time   *types.TimeString `json:"time,omitempty"`
	AllDay bool              `json:"allDay,omitempty"`
}

// CoversDate возвращает true, если блокировка относится к указанной дате
func (b *MonthlyBlockedSlot) CoversDate(date time.Time) bool {
	return b.Date == date.Format(DateFormat)
}

// MonthlySchedule материализация месяца: шаблон + месячные блокировки
// Создается при первом обращении админки к месяцу
type MonthlySchedule struct {
	ID           int64
	Year         int
	Month        int
	TemplateID   int64
	BlockedSlots []MonthlyBlockedSlot
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BlockedSlot глобальная блокировка диапазона дат/времени (отпуск, праздники)
// Действует независимо от месячных расписаний
type BlockedSlot struct {
	ID        int64
	StartDate time.Time
	EndDate   *time.Time
	StartTime *types.TimeString
	EndTime   *types.TimeString
	IsAllDay  bool
	Reason    string
	CreatedAt time.Time
}

// CoversDate возвращает true, если дата попадает в диапазон блокировки
func (b *BlockedSlot) CoversDate(date time.Time) bool {
	day := date.Format(DateFormat)
	if day < b.StartDate.Format(DateFormat) {
		return false
	}
	end := b.StartDate
	if b.EndDate != nil {
		end = *b.EndDate
	}
	return day <= end.Format(DateFormat)
}

// BlocksWholeDay возвращает true, если блокировка закрывает день целиком
// (явный флаг all-day либо отсутствие временного окна)
func (b *BlockedSlot) BlocksWholeDay() bool {
	return b.IsAllDay || b.StartTime == nil || b.EndTime == nil
}

// CoversTime возвращает true, если время слота попадает в окно блокировки
// [StartTime, EndTime]
func (b *BlockedSlot) CoversTime(t types.TimeString) bool {
	if b.BlocksWholeDay() {
		return true
	}
	return !t.IsBefore(*b.StartTime) && !t.IsAfter(*b.EndTime)
}
