package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// SlotState состояние слота в расписании дня
type SlotState string

const (
	// SlotOpen слот открыт для бронирования
	SlotOpen SlotState = "open"
	// SlotClosed слот закрыт расписанием или блокировкой
	SlotClosed SlotState = "closed"
	// SlotBooked слот занят записью (полная длительность услуги)
	SlotBooked SlotState = "booked"
	// SlotBufferForward слот-пауза сразу после записи
	SlotBufferForward SlotState = "buffer_forward"
	// SlotBufferBackward слот, с которого услуга закончилась бы впритык
	// к началу следующей записи
	SlotBufferBackward SlotState = "buffer_backward"
)

// IsBuffer возвращает true для буферных состояний
func (s SlotState) IsBuffer() bool {
	return s == SlotBufferForward || s == SlotBufferBackward
}

// Slot ячейка 30-минутной сетки с состоянием
type Slot struct {
	Time          types.TimeString
	State         SlotState
	AppointmentID *int64 // ID записи, занимающей слот (для booked)
}

// DaySchedule расписание одного дня: все слоты сетки в порядке времени
type DaySchedule struct {
	Date  time.Time
	Slots []Slot
}

// GridTimes возвращает все времена слотовой сетки (07:00 ... 20:30)
func GridTimes() []types.TimeString {
	times := make([]types.TimeString, 0, GridSlotCount)
	for m := GridStartMinutes; m <= GridEndMinutes; m += SlotDurationMinutes {
		times = append(times, types.TimeString(fmt.Sprintf("%02d:%02d", m/60, m%60)))
	}
	return times
}

// IsOnGrid проверяет, что время попадает на слотовую сетку
func IsOnGrid(t types.TimeString) bool {
	m, err := t.Minutes()
	if err != nil {
		return false
	}
	if m < GridStartMinutes || m > GridEndMinutes {
		return false
	}
	return (m-GridStartMinutes)%SlotDurationMinutes == 0
}

// SlotsNeeded возвращает количество слотов сетки, необходимых для услуги
// указанной длительности (округление вверх)
func SlotsNeeded(durationMinutes int) int {
	if durationMinutes <= 0 {
		return 0
	}
	return (durationMinutes + SlotDurationMinutes - 1) / SlotDurationMinutes
}

// NewDaySchedule создает расписание дня, в котором все слоты закрыты
func NewDaySchedule(date time.Time) DaySchedule {
	times := GridTimes()
	slots := make([]Slot, len(times))
	for i, t := range times {
		slots[i] = Slot{Time: t, State: SlotClosed}
	}
	return DaySchedule{Date: date, Slots: slots}
}

// SlotIndex возвращает индекс слота по времени, либо -1 если время вне сетки
func (d *DaySchedule) SlotIndex(t types.TimeString) int {
	m, err := t.Minutes()
	if err != nil {
		return -1
	}
	if m < GridStartMinutes || m > GridEndMinutes {
		return -1
	}
	if (m-GridStartMinutes)%SlotDurationMinutes != 0 {
		return -1
	}
	return (m - GridStartMinutes) / SlotDurationMinutes
}

// StateAt возвращает состояние слота по времени (closed для времени вне сетки)
func (d *DaySchedule) StateAt(t types.TimeString) SlotState {
	idx := d.SlotIndex(t)
	if idx < 0 {
		return SlotClosed
	}
	return d.Slots[idx].State
}
