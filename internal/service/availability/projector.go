package availability

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// projectAppointments накладывает активные записи на базовое расписание дня
//
// Для каждой записи занимаются все слоты полной длительности услуги
// (округление вверх до сетки). Запись занимает слот даже если он closed -
// существующие записи всегда сильнее более поздних правок расписания.
//
// Буферы:
//   - forward: слот сразу после занятого диапазона, если он открыт,
//     помечается buffer_forward - после каждой записи остаётся пауза
//   - backward: просматривая слоты в обратном порядке, открытый слот T
//     помечается buffer_backward, если существует услуга, чья длительность
//     заканчивается ровно в начале более поздней записи (T + d == T2).
//     Срабатывает только точное совпадение; услуги, которые не влезают,
//     отсекаются общей проверкой вместимости
func projectAppointments(day *domain.DaySchedule, appts []*domain.Appointment, services []*domain.Service) {
	durations := make(map[int64]int, len(services))
	for _, svc := range services {
		durations[svc.ID] = svc.DurationMinutes
	}

	// Индексы слотов, в которых начинаются записи (для backward-буфера)
	startIdxs := make([]int, 0, len(appts))

	// 1. Занятость + forward-буфер
	for _, appt := range appts {
		if !appt.IsActive() {
			continue
		}

		idx := day.SlotIndex(appt.StartTime())
		if idx < 0 {
			continue
		}
		startIdxs = append(startIdxs, idx)

		duration, ok := durations[appt.ServiceID]
		if !ok {
			// Услуга удалена из каталога - запись всё равно занимает минимум один слот
			duration = domain.SlotDurationMinutes
		}

		apptID := appt.ID
		n := domain.SlotsNeeded(duration)
		for i := idx; i < idx+n && i < len(day.Slots); i++ {
			day.Slots[i].State = domain.SlotBooked
			day.Slots[i].AppointmentID = &apptID
		}

		// Forward-буфер: следующий за занятым диапазоном слот
		if next := idx + n; next < len(day.Slots) && day.Slots[next].State == domain.SlotOpen {
			day.Slots[next].State = domain.SlotBufferForward
		}
	}

	if len(startIdxs) == 0 {
		return
	}

	// 2. Backward-буфер: обратный проход по слотам
	for i := len(day.Slots) - 1; i >= 0; i-- {
		if day.Slots[i].State != domain.SlotOpen {
			continue
		}
		for _, startIdx := range startIdxs {
			if startIdx <= i {
				continue
			}
			gapMinutes := (startIdx - i) * domain.SlotDurationMinutes
			if hasExactDuration(services, gapMinutes) {
				day.Slots[i].State = domain.SlotBufferBackward
				break
			}
		}
	}
}

// hasExactDuration проверяет, есть ли услуга с точно такой длительностью
func hasExactDuration(services []*domain.Service, minutes int) bool {
	for _, svc := range services {
		if svc.DurationMinutes == minutes {
			return true
		}
	}
	return false
}
