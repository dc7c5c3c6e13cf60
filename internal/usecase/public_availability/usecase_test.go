package public_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var testNow = time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
var testDate = time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)

type fakeBuilder struct {
	openTimes []types.TimeString
	built     []time.Time
}

func (b *fakeBuilder) BuildDay(_ context.Context, date time.Time) domain.DaySchedule {
	b.built = append(b.built, date)
	day := domain.NewDaySchedule(date)
	for _, t := range b.openTimes {
		day.Slots[day.SlotIndex(t)].State = domain.SlotOpen
	}
	return day
}

type fakeApptRepo struct {
	appts []*domain.Appointment
	err   error
	from  time.Time
	to    time.Time
}

func (r *fakeApptRepo) GetByDateRange(_ context.Context, from, to time.Time, _ bool) ([]*domain.Appointment, error) {
	r.from, r.to = from, to
	return r.appts, r.err
}

type fakeBlockRepo struct {
	blocks []*domain.TemporaryBlock
	err    error
}

func (r *fakeBlockRepo) GetActiveByDateRange(_ context.Context, _, _ time.Time, _ time.Time) ([]*domain.TemporaryBlock, error) {
	return r.blocks, r.err
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestUseCase(builder *fakeBuilder, appts *fakeApptRepo, blocks *fakeBlockRepo) *UseCase {
	uc := NewUseCase(builder, appts, blocks, nopLogger{})
	uc.timeProvider = &fixedClock{now: testNow}
	return uc
}

func TestExecute_SingleDate(t *testing.T) {
	builder := &fakeBuilder{openTimes: []types.TimeString{"09:00", "09:30"}}
	appts := &fakeApptRepo{appts: []*domain.Appointment{{
		ID: 1, ServiceID: 1, PreferredDate: testDate, PreferredTime: "09:00",
		Status: domain.StatusConfirmed,
	}}}
	blocks := &fakeBlockRepo{blocks: []*domain.TemporaryBlock{{
		ID: "b1", Date: testDate, Time: "09:30", SessionID: "s",
		ExpiresAt: testNow.Add(5 * time.Minute),
	}}}
	uc := newTestUseCase(builder, appts, blocks)

	resp, err := uc.Execute(context.Background(), &Request{Date: ptr.Ptr(testDate)})
	require.NoError(t, err)

	require.Len(t, resp.Days, 1)
	assert.Equal(t, "2026-09-20", resp.Days[0].Date)
	assert.Equal(t, []types.TimeString{"09:00", "09:30"}, resp.Days[0].OpenTimes)

	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, "2026-09-20", resp.Appointments[0].Date)
	assert.Equal(t, types.TimeString("09:00"), resp.Appointments[0].Time)
	assert.Equal(t, "confirmed", resp.Appointments[0].Status)

	require.Len(t, resp.Blocked, 1)
	assert.Equal(t, types.TimeString("09:30"), resp.Blocked[0].Time)
}

func TestExecute_DefaultWindowIsThirtyDays(t *testing.T) {
	builder := &fakeBuilder{}
	appts := &fakeApptRepo{}
	uc := newTestUseCase(builder, appts, &fakeBlockRepo{})

	resp, err := uc.Execute(context.Background(), &Request{})
	require.NoError(t, err)

	assert.Len(t, resp.Days, 30)
	assert.Equal(t, "2026-09-15", resp.Days[0].Date)
	assert.Equal(t, "2026-10-14", resp.Days[29].Date)

	// Репозиторий запрошен тем же окном
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), appts.from)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), appts.to)
}

func TestExecute_ExplicitRange(t *testing.T) {
	builder := &fakeBuilder{}
	uc := newTestUseCase(builder, &fakeApptRepo{}, &fakeBlockRepo{})

	resp, err := uc.Execute(context.Background(), &Request{RangeDays: 7})
	require.NoError(t, err)

	assert.Len(t, resp.Days, 7)
	assert.Len(t, builder.built, 7)
}

func TestExecute_CacheControl(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{"", "max-age=60, s-maxage=300"},
		{CacheModeShort, "max-age=60, s-maxage=300"},
		{CacheModeLong, "s-maxage=86400"},
	}

	for _, tt := range tests {
		t.Run("mode="+tt.mode, func(t *testing.T) {
			uc := newTestUseCase(&fakeBuilder{}, &fakeApptRepo{}, &fakeBlockRepo{})

			resp, err := uc.Execute(context.Background(), &Request{Date: ptr.Ptr(testDate), CacheMode: tt.mode})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.CacheControl)
		})
	}
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newTestUseCase(&fakeBuilder{}, &fakeApptRepo{}, &fakeBlockRepo{})

	_, err := uc.Execute(context.Background(), &Request{RangeDays: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{CacheMode: "forever"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_StoreError(t *testing.T) {
	uc := newTestUseCase(&fakeBuilder{}, &fakeApptRepo{err: assert.AnError}, &fakeBlockRepo{})

	_, err := uc.Execute(context.Background(), &Request{Date: ptr.Ptr(testDate)})
	assert.ErrorIs(t, err, ErrInternal)
}
