package public_availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Режимы кеширования ответа на стороне CDN/браузера
const (
	CacheModeShort = "short"
	CacheModeLong  = "long"

	cacheControlShort = "max-age=60, s-maxage=300"
	cacheControlLong  = "s-maxage=86400"
)

// Request запрос публичной доступности
// Date либо конкретная дата, либо nil - тогда окно RangeDays от сегодня
type Request struct {
	Date      *time.Time
	RangeDays int
	CacheMode string
}

// DayAvailability грубая доступность одного дня: открытые по расписанию
// времена без проекции записей и буферов
type DayAvailability struct {
	Date      string             `json:"date"`
	OpenTimes []types.TimeString `json:"openTimes"`
}

// AppointmentSlot занятый записью слот (без персональных данных клиента)
type AppointmentSlot struct {
	Date   string           `json:"date"`
	Time   types.TimeString `json:"time"`
	Status string           `json:"status"`
}

// BlockedSlotEntry слот, удержанный временной блокировкой
type BlockedSlotEntry struct {
	Date      string           `json:"date"`
	Time      types.TimeString `json:"time"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// Response ответ публичной доступности
// Клиент сам накладывает занятость на открытые времена
type Response struct {
	Days         []DayAvailability  `json:"days"`
	Appointments []AppointmentSlot  `json:"appointments"`
	Blocked      []BlockedSlotEntry `json:"blocked"`

	// CacheControl значение заголовка Cache-Control для ответа
	CacheControl string `json:"-"`
}
