package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var engDate = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

type fakeBuilder struct {
	day domain.DaySchedule
}

func (b *fakeBuilder) BuildDay(_ context.Context, _ time.Time) domain.DaySchedule {
	// Копия, чтобы проекция одного теста не текла в следующий вызов
	day := domain.DaySchedule{Date: b.day.Date, Slots: make([]domain.Slot, len(b.day.Slots))}
	copy(day.Slots, b.day.Slots)
	return day
}

type fakeApptRepo struct {
	appts []*domain.Appointment
	err   error
}

func (r *fakeApptRepo) GetByDate(_ context.Context, _ time.Time, _ bool) ([]*domain.Appointment, error) {
	return r.appts, r.err
}

type fakeBlockRepo struct {
	blocks []*domain.TemporaryBlock
	err    error
}

func (r *fakeBlockRepo) GetActiveByDate(_ context.Context, _ time.Time, _ time.Time) ([]*domain.TemporaryBlock, error) {
	return r.blocks, r.err
}

type fakeServiceRepo struct {
	services []*domain.Service
	err      error
}

func (r *fakeServiceRepo) GetByID(_ context.Context, id int64) (*domain.Service, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, s := range r.services {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, ErrServiceNotFound
}

func (r *fakeServiceRepo) List(_ context.Context) ([]*domain.Service, error) {
	return r.services, r.err
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func engineDay(times ...types.TimeString) domain.DaySchedule {
	day := domain.NewDaySchedule(engDate)
	for _, t := range times {
		day.Slots[day.SlotIndex(t)].State = domain.SlotOpen
	}
	return day
}

func newTestEngine(builder *fakeBuilder, appts *fakeApptRepo, blocks *fakeBlockRepo, services *fakeServiceRepo) *Engine {
	e := NewEngine(builder, appts, blocks, services, nil, nopLogger{})
	e.timeProvider = &fixedClock{now: engDate.Add(12 * time.Hour)}
	return e
}

func slotByTime(t *testing.T, slots []SlotAvailability, at types.TimeString) SlotAvailability {
	t.Helper()
	for _, s := range slots {
		if s.Time == at {
			return s
		}
	}
	t.Fatalf("slot %s not found", at)
	return SlotAvailability{}
}

func TestListAvailableSlots_OtherSessionBlock(t *testing.T) {
	builder := &fakeBuilder{day: engineDay("10:00", "10:30")}
	blocks := &fakeBlockRepo{blocks: []*domain.TemporaryBlock{{
		ID:        "b1",
		Date:      engDate,
		Time:      "10:00",
		SessionID: "session-a",
		ExpiresAt: engDate.Add(13 * time.Hour),
	}}}
	services := &fakeServiceRepo{services: []*domain.Service{{ID: 1, DurationMinutes: 30}}}
	engine := newTestEngine(builder, &fakeApptRepo{}, blocks, services)

	// Для чужой сессии слот удержан
	result := engine.ListAvailableSlots(context.Background(), engDate, "session-b")
	held := slotByTime(t, result, "10:00")
	assert.False(t, held.IsAvailable)
	assert.True(t, held.IsTemporarilyBlocked)

	// Владелец видит свой слот доступным
	result = engine.ListAvailableSlots(context.Background(), engDate, "session-a")
	own := slotByTime(t, result, "10:00")
	assert.True(t, own.IsAvailable)
	assert.False(t, own.IsTemporarilyBlocked)
}

func TestListAvailableSlots_ExpiredBlockIgnored(t *testing.T) {
	builder := &fakeBuilder{day: engineDay("10:00")}
	// Репозиторий вернул блокировку, но по индуцированным часам она истекла
	blocks := &fakeBlockRepo{blocks: []*domain.TemporaryBlock{{
		ID:        "b1",
		Date:      engDate,
		Time:      "10:00",
		SessionID: "session-a",
		ExpiresAt: engDate.Add(11 * time.Hour),
	}}}
	services := &fakeServiceRepo{services: []*domain.Service{{ID: 1, DurationMinutes: 30}}}
	engine := newTestEngine(builder, &fakeApptRepo{}, blocks, services)

	result := engine.ListAvailableSlots(context.Background(), engDate, "session-b")
	assert.True(t, slotByTime(t, result, "10:00").IsAvailable)
}

func TestListAvailableSlots_FailClosedOnStoreError(t *testing.T) {
	builder := &fakeBuilder{day: engineDay("10:00", "10:30")}
	services := &fakeServiceRepo{services: []*domain.Service{{ID: 1, DurationMinutes: 30}}}
	engine := newTestEngine(builder, &fakeApptRepo{err: assert.AnError}, &fakeBlockRepo{}, services)

	result := engine.ListAvailableSlots(context.Background(), engDate, "")

	require.Len(t, result, domain.GridSlotCount)
	for _, s := range result {
		assert.False(t, s.IsAvailable)
	}
}

func TestListAvailableSlots_ServiceFit(t *testing.T) {
	// Открыты 10:00 и 10:30; 60-минутная услуга влезает только с 10:00
	builder := &fakeBuilder{day: engineDay("10:00", "10:30")}
	services := &fakeServiceRepo{services: []*domain.Service{
		{ID: 1, DurationMinutes: 30},
		{ID: 2, DurationMinutes: 60},
	}}
	engine := newTestEngine(builder, &fakeApptRepo{}, &fakeBlockRepo{}, services)

	result := engine.ListAvailableSlots(context.Background(), engDate, "")

	first := slotByTime(t, result, "10:00")
	require.NotNil(t, first.ServiceAvailability)
	assert.True(t, first.ServiceAvailability[1])
	assert.True(t, first.ServiceAvailability[2])

	second := slotByTime(t, result, "10:30")
	require.NotNil(t, second.ServiceAvailability)
	assert.True(t, second.ServiceAvailability[1])
	assert.False(t, second.ServiceAvailability[2], "11:00 is closed, 60m does not fit")
}

func TestListAvailableSlots_DurationMonotonicity(t *testing.T) {
	builder := &fakeBuilder{day: engineDay("09:00", "09:30", "10:00", "10:30", "11:00")}
	services := &fakeServiceRepo{services: []*domain.Service{
		{ID: 1, DurationMinutes: 30},
		{ID: 2, DurationMinutes: 60},
		{ID: 3, DurationMinutes: 90},
	}}
	// Чужая блокировка на 10:30 режет длинные услуги на ранних слотах
	blocks := &fakeBlockRepo{blocks: []*domain.TemporaryBlock{{
		ID: "b1", Date: engDate, Time: "10:30", SessionID: "session-a",
		ExpiresAt: engDate.Add(13 * time.Hour),
	}}}
	engine := newTestEngine(builder, &fakeApptRepo{}, blocks, services)

	result := engine.ListAvailableSlots(context.Background(), engDate, "session-b")

	// Слот, отвергнутый для короткой услуги, отвергнут и для более длинной
	for _, s := range result {
		if s.ServiceAvailability == nil {
			continue
		}
		if !s.ServiceAvailability[1] {
			assert.False(t, s.ServiceAvailability[2], "slot %s", s.Time)
		}
		if !s.ServiceAvailability[2] {
			assert.False(t, s.ServiceAvailability[3], "slot %s", s.Time)
		}
	}

	ten := slotByTime(t, result, "10:00")
	assert.True(t, ten.ServiceAvailability[1])
	assert.False(t, ten.ServiceAvailability[2], "held 10:30 cuts the 60m run")
	assert.False(t, ten.ServiceAvailability[3])
}

func TestIsSlotAvailableForService(t *testing.T) {
	builder := &fakeBuilder{day: engineDay("10:00", "10:30", "11:00")}
	services := &fakeServiceRepo{services: []*domain.Service{
		{ID: 1, DurationMinutes: 30},
		{ID: 2, DurationMinutes: 60},
	}}
	engine := newTestEngine(builder, &fakeApptRepo{}, &fakeBlockRepo{}, services)
	ctx := context.Background()

	assert.True(t, engine.IsSlotAvailableForService(ctx, engDate, "10:00", 2, "", nil))
	assert.True(t, engine.IsSlotAvailableForService(ctx, engDate, "10:30", 2, "", nil))
	assert.False(t, engine.IsSlotAvailableForService(ctx, engDate, "11:00", 2, "", nil),
		"11:30 is closed")
	assert.False(t, engine.IsSlotAvailableForService(ctx, engDate, "09:00", 1, "", nil),
		"slot is closed by schedule")
	assert.False(t, engine.IsSlotAvailableForService(ctx, engDate, "10:15", 1, "", nil),
		"off-grid time")
}

func TestIsSlotAvailableForService_ExcludesOwnAppointment(t *testing.T) {
	builder := &fakeBuilder{day: engineDay("10:00", "10:30", "11:00")}
	services := &fakeServiceRepo{services: []*domain.Service{{ID: 1, DurationMinutes: 60}}}
	appts := &fakeApptRepo{appts: []*domain.Appointment{{
		ID: 42, ServiceID: 1, PreferredDate: engDate, PreferredTime: "10:00",
		Status: domain.StatusPending,
	}}}
	engine := newTestEngine(builder, appts, &fakeBlockRepo{}, services)
	ctx := context.Background()

	// Без исключения запись держит свои слоты
	assert.False(t, engine.IsSlotAvailableForService(ctx, engDate, "10:00", 1, "", nil))

	// Перенос той же записи в пределах её диапазона разрешён
	id := int64(42)
	assert.True(t, engine.IsSlotAvailableForService(ctx, engDate, "10:00", 1, "", &id))

	// Чужая запись исключением не становится
	other := int64(7)
	assert.False(t, engine.IsSlotAvailableForService(ctx, engDate, "10:00", 1, "", &other))
}

func TestIsSlotAvailableForService_OwnBuffersDoNotBlock(t *testing.T) {
	builder := &fakeBuilder{day: engineDay("09:00", "09:30", "10:00", "10:30", "11:00", "11:30")}
	services := &fakeServiceRepo{services: []*domain.Service{
		{ID: 1, DurationMinutes: 30},
		{ID: 2, DurationMinutes: 60},
	}}
	ctx := context.Background()

	// Перенос на 30 минут позже - в собственный forward-буфер
	appts := &fakeApptRepo{appts: []*domain.Appointment{{
		ID: 42, ServiceID: 1, PreferredDate: engDate, PreferredTime: "10:00",
		Status: domain.StatusPending,
	}}}
	engine := newTestEngine(builder, appts, &fakeBlockRepo{}, services)

	id := int64(42)
	assert.True(t, engine.IsSlotAvailableForService(ctx, engDate, "10:30", 1, "", &id))
	assert.False(t, engine.IsSlotAvailableForService(ctx, engDate, "10:30", 1, "", nil),
		"without exclusion the forward buffer holds")

	// Перенос ровно на длительность услуги раньше - в собственный backward-буфер
	appts = &fakeApptRepo{appts: []*domain.Appointment{{
		ID: 7, ServiceID: 2, PreferredDate: engDate, PreferredTime: "11:00",
		Status: domain.StatusConfirmed,
	}}}
	engine = newTestEngine(builder, appts, &fakeBlockRepo{}, services)

	id = int64(7)
	assert.True(t, engine.IsSlotAvailableForService(ctx, engDate, "10:00", 2, "", &id))
	assert.False(t, engine.IsSlotAvailableForService(ctx, engDate, "10:00", 2, "", nil),
		"without exclusion the backward buffer holds")
}

func TestIsSlotAvailableForService_FailClosed(t *testing.T) {
	builder := &fakeBuilder{day: engineDay("10:00")}
	services := &fakeServiceRepo{err: assert.AnError}
	engine := newTestEngine(builder, &fakeApptRepo{}, &fakeBlockRepo{}, services)

	assert.False(t, engine.IsSlotAvailableForService(context.Background(), engDate, "10:00", 1, "", nil))
}
