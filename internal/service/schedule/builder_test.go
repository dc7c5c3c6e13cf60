package schedule

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type fakeRepo struct {
	assignments map[string]*domain.TemplateAssignment // "year-month" -> assignment
	templates   map[int64]*domain.ScheduleTemplate
	monthly     map[string]*domain.MonthlySchedule
	global      []*domain.BlockedSlot

	assignmentErr error
	templateErr   error
}

func (r *fakeRepo) GetAssignmentForMonth(_ context.Context, year, month int) (*domain.TemplateAssignment, error) {
	if r.assignmentErr != nil {
		return nil, r.assignmentErr
	}
	key := assignKey(year, month)
	if a, ok := r.assignments[key]; ok {
		return a, nil
	}
	if a, ok := r.assignments[assignKey(year, 0)]; ok {
		return a, nil
	}
	return nil, scheduleRepo.ErrAssignmentNotFound
}

func (r *fakeRepo) GetTemplateByID(_ context.Context, id int64) (*domain.ScheduleTemplate, error) {
	if r.templateErr != nil {
		return nil, r.templateErr
	}
	if tpl, ok := r.templates[id]; ok {
		return tpl, nil
	}
	return nil, scheduleRepo.ErrTemplateNotFound
}

func (r *fakeRepo) GetMonthlySchedule(_ context.Context, year, month int) (*domain.MonthlySchedule, error) {
	if m, ok := r.monthly[assignKey(year, month)]; ok {
		return m, nil
	}
	return nil, scheduleRepo.ErrMonthlyScheduleNotFound
}

func (r *fakeRepo) GetBlockedSlotsForDate(_ context.Context, _ time.Time) ([]*domain.BlockedSlot, error) {
	return r.global, nil
}

func assignKey(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Вторник 2026-09-15
var testDate = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

func weekdayTemplate(times ...types.TimeString) *domain.ScheduleTemplate {
	return &domain.ScheduleTemplate{
		ID:   1,
		Name: "standard week",
		Schedule: domain.WeeklySchedule{
			"tuesday": times,
		},
	}
}

func repoWithTemplate(times ...types.TimeString) *fakeRepo {
	return &fakeRepo{
		assignments: map[string]*domain.TemplateAssignment{
			assignKey(2026, 9): {ID: 1, TemplateID: 1, Year: 2026, Month: ptr.Ptr(9)},
		},
		templates: map[int64]*domain.ScheduleTemplate{1: weekdayTemplate(times...)},
	}
}

func TestBuildDay_NoAssignment_AllClosed(t *testing.T) {
	builder := NewBuilder(&fakeRepo{}, nopLogger{})

	day := builder.BuildDay(context.Background(), testDate)

	require.Len(t, day.Slots, domain.GridSlotCount)
	for _, slot := range day.Slots {
		assert.Equal(t, domain.SlotClosed, slot.State)
	}
}

func TestBuildDay_OpensTemplateTimes(t *testing.T) {
	repo := repoWithTemplate("09:00", "09:30", "10:00")
	builder := NewBuilder(repo, nopLogger{})

	day := builder.BuildDay(context.Background(), testDate)

	assert.Equal(t, domain.SlotOpen, day.StateAt("09:00"))
	assert.Equal(t, domain.SlotOpen, day.StateAt("09:30"))
	assert.Equal(t, domain.SlotOpen, day.StateAt("10:00"))
	assert.Equal(t, domain.SlotClosed, day.StateAt("10:30"))
	assert.Equal(t, domain.SlotClosed, day.StateAt("07:00"))
}

func TestBuildDay_MonthAssignmentBeatsYear(t *testing.T) {
	// Годовая привязка открывает утро, месячная - вечер; побеждает месячная
	repo := &fakeRepo{
		assignments: map[string]*domain.TemplateAssignment{
			assignKey(2026, 0): {ID: 1, TemplateID: 1, Year: 2026},
			assignKey(2026, 9): {ID: 2, TemplateID: 2, Year: 2026, Month: ptr.Ptr(9)},
		},
		templates: map[int64]*domain.ScheduleTemplate{
			1: {ID: 1, Schedule: domain.WeeklySchedule{"tuesday": {"09:00"}}},
			2: {ID: 2, Schedule: domain.WeeklySchedule{"tuesday": {"18:00"}}},
		},
	}
	builder := NewBuilder(repo, nopLogger{})

	day := builder.BuildDay(context.Background(), testDate)

	assert.Equal(t, domain.SlotClosed, day.StateAt("09:00"))
	assert.Equal(t, domain.SlotOpen, day.StateAt("18:00"))
}

func TestBuildDay_AllDayMonthlyBlock(t *testing.T) {
	repo := repoWithTemplate("09:00", "09:30")
	repo.monthly = map[string]*domain.MonthlySchedule{
		assignKey(2026, 9): {
			Year: 2026, Month: 9,
			BlockedSlots: []domain.MonthlyBlockedSlot{
				{Date: "2026-09-15", AllDay: true},
			},
		},
	}
	builder := NewBuilder(repo, nopLogger{})

	day := builder.BuildDay(context.Background(), testDate)

	for _, slot := range day.Slots {
		assert.Equal(t, domain.SlotClosed, slot.State)
	}
}

func TestBuildDay_SpecificTimeMonthlyBlock(t *testing.T) {
	repo := repoWithTemplate("09:00", "09:30", "10:00")
	repo.monthly = map[string]*domain.MonthlySchedule{
		assignKey(2026, 9): {
			Year: 2026, Month: 9,
			BlockedSlots: []domain.MonthlyBlockedSlot{
				{Date: "2026-09-15", Time: ptr.Ptr(types.TimeString("09:30"))},
			},
		},
	}
	builder := NewBuilder(repo, nopLogger{})

	day := builder.BuildDay(context.Background(), testDate)

	assert.Equal(t, domain.SlotOpen, day.StateAt("09:00"))
	assert.Equal(t, domain.SlotClosed, day.StateAt("09:30"))
	assert.Equal(t, domain.SlotOpen, day.StateAt("10:00"))
}

func TestBuildDay_GlobalBlockWindow(t *testing.T) {
	repo := repoWithTemplate("09:00", "09:30", "10:00", "10:30")
	repo.global = []*domain.BlockedSlot{
		{
			ID:        1,
			StartDate: testDate.AddDate(0, 0, -1),
			EndDate:   ptr.Ptr(testDate.AddDate(0, 0, 1)),
			StartTime: ptr.Ptr(types.TimeString("09:30")),
			EndTime:   ptr.Ptr(types.TimeString("10:00")),
		},
	}
	builder := NewBuilder(repo, nopLogger{})

	day := builder.BuildDay(context.Background(), testDate)

	assert.Equal(t, domain.SlotOpen, day.StateAt("09:00"))
	assert.Equal(t, domain.SlotClosed, day.StateAt("09:30"))
	assert.Equal(t, domain.SlotClosed, day.StateAt("10:00"))
	assert.Equal(t, domain.SlotOpen, day.StateAt("10:30"))
}

func TestBuildDay_GlobalAllDayBlock(t *testing.T) {
	repo := repoWithTemplate("09:00")
	repo.global = []*domain.BlockedSlot{
		{ID: 1, StartDate: testDate, IsAllDay: true},
	}
	builder := NewBuilder(repo, nopLogger{})

	day := builder.BuildDay(context.Background(), testDate)

	assert.Equal(t, domain.SlotClosed, day.StateAt("09:00"))
}

func TestBuildDay_StoreError_FailsClosed(t *testing.T) {
	repo := repoWithTemplate("09:00")
	repo.templateErr = assert.AnError
	builder := NewBuilder(repo, nopLogger{})

	day := builder.BuildDay(context.Background(), testDate)

	for _, slot := range day.Slots {
		assert.Equal(t, domain.SlotClosed, slot.State)
	}
}
