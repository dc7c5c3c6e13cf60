package domain

import "time"

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Слотовая сетка: фиксированный шаг 30 минут, первый слот 07:00,
// последний 20:30 (28 слотов в сутки)
const (
	SlotDurationMinutes = 30
	GridStartMinutes    = 7 * 60     // 07:00
	GridEndMinutes      = 20*60 + 30 // 20:30 - начало последнего слота
	GridSlotCount       = (GridEndMinutes-GridStartMinutes)/SlotDurationMinutes + 1
)

// TTL константы движка доступности
const (
	// TempBlockTTL время жизни временной блокировки слота
	TempBlockTTL = 10 * time.Minute

	// AvailabilityCacheTTL время жизни кеша результатов запроса доступности
	AvailabilityCacheTTL = 5 * time.Minute
)

// ActiveStatuses статусы записей, занимающих слоты при расчёте доступности
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
}
