package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var projDate = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

func openDay(times ...types.TimeString) domain.DaySchedule {
	day := domain.NewDaySchedule(projDate)
	for _, t := range times {
		day.Slots[day.SlotIndex(t)].State = domain.SlotOpen
	}
	return day
}

func activeAppt(id int64, serviceID int64, start types.TimeString) *domain.Appointment {
	return &domain.Appointment{
		ID:            id,
		ServiceID:     serviceID,
		PreferredDate: projDate,
		PreferredTime: start,
		Status:        domain.StatusConfirmed,
	}
}

func TestProjectAppointments_FiftyMinuteService(t *testing.T) {
	// Шаблон 09:00-12:00, услуга 50 минут на 10:00:
	// 10:00 и 10:30 заняты, 11:00 - forward-буфер
	day := openDay("09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00")
	services := []*domain.Service{{ID: 1, DurationMinutes: 50}}
	appts := []*domain.Appointment{activeAppt(7, 1, "10:00")}

	projectAppointments(&day, appts, services)

	assert.Equal(t, domain.SlotBooked, day.StateAt("10:00"))
	assert.Equal(t, domain.SlotBooked, day.StateAt("10:30"))
	assert.Equal(t, domain.SlotBufferForward, day.StateAt("11:00"))
	assert.Equal(t, domain.SlotOpen, day.StateAt("11:30"))

	// Занятые слоты ссылаются на запись
	idx := day.SlotIndex("10:00")
	require.NotNil(t, day.Slots[idx].AppointmentID)
	assert.Equal(t, int64(7), *day.Slots[idx].AppointmentID)
	idx = day.SlotIndex("10:30")
	require.NotNil(t, day.Slots[idx].AppointmentID)
	assert.Equal(t, int64(7), *day.Slots[idx].AppointmentID)
}

func TestProjectAppointments_NoForwardBufferOnClosedSlot(t *testing.T) {
	// Следующий после занятого диапазона слот закрыт - буфер не ставится
	day := openDay("10:00")
	services := []*domain.Service{{ID: 1, DurationMinutes: 30}}

	projectAppointments(&day, []*domain.Appointment{activeAppt(1, 1, "10:00")}, services)

	assert.Equal(t, domain.SlotBooked, day.StateAt("10:00"))
	assert.Equal(t, domain.SlotClosed, day.StateAt("10:30"))
}

func TestProjectAppointments_BackwardBufferExactFit(t *testing.T) {
	// Запись на 11:00; услуга 60 минут существует, значит 10:00 -
	// backward-буфер (60 минут от 10:00 заканчиваются ровно в 11:00).
	// Для 10:30 точного совпадения нет (30-минутной услуги нет)
	day := openDay("09:00", "09:30", "10:00", "10:30", "11:00", "11:30")
	services := []*domain.Service{{ID: 1, DurationMinutes: 60}}

	projectAppointments(&day, []*domain.Appointment{activeAppt(1, 1, "11:00")}, services)

	assert.Equal(t, domain.SlotBufferBackward, day.StateAt("10:00"))
	assert.Equal(t, domain.SlotOpen, day.StateAt("10:30"))
	assert.Equal(t, domain.SlotBooked, day.StateAt("11:00"))
	assert.Equal(t, domain.SlotBooked, day.StateAt("11:30"))
	assert.Equal(t, domain.SlotOpen, day.StateAt("09:00"), "gap of 120m has no matching service duration")
}

func TestProjectAppointments_IgnoresInactive(t *testing.T) {
	day := openDay("10:00", "10:30")
	services := []*domain.Service{{ID: 1, DurationMinutes: 30}}
	cancelled := activeAppt(1, 1, "10:00")
	cancelled.Status = domain.StatusCancelled

	projectAppointments(&day, []*domain.Appointment{cancelled}, services)

	assert.Equal(t, domain.SlotOpen, day.StateAt("10:00"))
	assert.Equal(t, domain.SlotOpen, day.StateAt("10:30"))
}

func TestProjectAppointments_UnknownServiceOccupiesOneSlot(t *testing.T) {
	// Услуга удалена из каталога - запись занимает минимум один слот
	day := openDay("10:00", "10:30")

	projectAppointments(&day, []*domain.Appointment{activeAppt(1, 99, "10:00")}, nil)

	assert.Equal(t, domain.SlotBooked, day.StateAt("10:00"))
	assert.Equal(t, domain.SlotBufferForward, day.StateAt("10:30"))
}
