package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func TestGridTimes(t *testing.T) {
	times := GridTimes()

	require.Len(t, times, GridSlotCount)
	assert.Equal(t, types.TimeString("07:00"), times[0])
	assert.Equal(t, types.TimeString("20:30"), times[len(times)-1])
}

func TestIsOnGrid(t *testing.T) {
	assert.True(t, IsOnGrid("07:00"))
	assert.True(t, IsOnGrid("13:30"))
	assert.True(t, IsOnGrid("20:30"))

	assert.False(t, IsOnGrid("06:30"), "before grid start")
	assert.False(t, IsOnGrid("21:00"), "after grid end")
	assert.False(t, IsOnGrid("10:15"), "off the 30-minute step")
	assert.False(t, IsOnGrid("bad"))
}

func TestSlotsNeeded(t *testing.T) {
	assert.Equal(t, 1, SlotsNeeded(30))
	assert.Equal(t, 2, SlotsNeeded(50), "rounds up to the grid")
	assert.Equal(t, 2, SlotsNeeded(60))
	assert.Equal(t, 3, SlotsNeeded(61))
	assert.Equal(t, 0, SlotsNeeded(0))
}

func TestDaySchedule_SlotIndex(t *testing.T) {
	day := NewDaySchedule(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 0, day.SlotIndex("07:00"))
	assert.Equal(t, 6, day.SlotIndex("10:00"))
	assert.Equal(t, GridSlotCount-1, day.SlotIndex("20:30"))
	assert.Equal(t, -1, day.SlotIndex("06:00"))
	assert.Equal(t, -1, day.SlotIndex("10:07"))
}

func TestNewDaySchedule_AllClosed(t *testing.T) {
	day := NewDaySchedule(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))

	require.Len(t, day.Slots, GridSlotCount)
	for _, slot := range day.Slots {
		assert.Equal(t, SlotClosed, slot.State)
	}
	assert.Equal(t, SlotClosed, day.StateAt("23:00"), "off-grid time reads as closed")
}

func TestAppointment_StatusGates(t *testing.T) {
	appt := &Appointment{Status: StatusPending}
	assert.True(t, appt.IsActive())
	assert.True(t, appt.CanBeCancelled())
	assert.True(t, appt.CanBeConfirmed())
	assert.True(t, appt.CanBeRescheduled())
	assert.False(t, appt.CanBeCompleted())

	appt.Status = StatusConfirmed
	assert.True(t, appt.IsActive())
	assert.True(t, appt.CanBeCompleted())
	assert.False(t, appt.CanBeConfirmed())

	appt.Status = StatusCancelled
	assert.False(t, appt.IsActive())
	assert.False(t, appt.CanBeCancelled())
	assert.True(t, appt.CanBeArchived())

	appt.Status = StatusCompleted
	assert.False(t, appt.IsActive())
	assert.True(t, appt.CanBeArchived())
}

func TestAppointment_EffectiveDateTime(t *testing.T) {
	preferred := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	confirmed := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)
	confirmedTime := types.TimeString("11:00")

	appt := &Appointment{
		PreferredDate: preferred,
		PreferredTime: "10:00",
	}
	assert.Equal(t, preferred, appt.BookingDate())
	assert.Equal(t, types.TimeString("10:00"), appt.StartTime())

	appt.ConfirmedDate = &confirmed
	appt.ConfirmedTime = &confirmedTime
	assert.Equal(t, confirmed, appt.BookingDate())
	assert.Equal(t, types.TimeString("11:00"), appt.StartTime())
}
