package create_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	apptRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointments"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/services"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var testNow = time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
var testDate = time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)

type fakeApptRepo struct {
	created *domain.Appointment
	err     error
}

func (r *fakeApptRepo) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	if r.err != nil {
		return nil, r.err
	}
	created := *appt
	created.ID = 101
	created.CreatedAt = testNow
	created.UpdatedAt = testNow
	r.created = &created
	return &created, nil
}

type fakeServiceRepo struct {
	err error
}

func (r *fakeServiceRepo) GetByID(_ context.Context, id int64) (*domain.Service, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &domain.Service{ID: id, DurationMinutes: 30}, nil
}

type fakeChecker struct {
	available   bool
	invalidated []time.Time
}

func (c *fakeChecker) IsSlotAvailableForService(_ context.Context, _ time.Time, _ types.TimeString, _ int64, _ string, _ *int64) bool {
	return c.available
}

func (c *fakeChecker) InvalidateDate(_ context.Context, date time.Time) {
	c.invalidated = append(c.invalidated, date)
}

type fakeBlockManager struct {
	released []string
}

func (m *fakeBlockManager) Release(_ context.Context, sessionID string) error {
	m.released = append(m.released, sessionID)
	return nil
}

// fakeTxManager выполняет функцию без транзакции
type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func validRequest() *Request {
	return &Request{
		ServiceID:     1,
		CustomerName:  "Анна Иванова",
		CustomerEmail: "anna@example.com",
		CustomerPhone: "+7 900 000-00-00",
		Date:          testDate,
		StartTime:     "10:00",
		SessionID:     "session-a",
	}
}

type fakeMetrics struct {
	created   []string
	conflicts []string
}

func (m *fakeMetrics) IncAppointmentCreated(status string) {
	m.created = append(m.created, status)
}

func (m *fakeMetrics) IncSlotConflict(source string) {
	m.conflicts = append(m.conflicts, source)
}

func newTestUseCase(appts *fakeApptRepo, services *fakeServiceRepo, checker *fakeChecker, blocks *fakeBlockManager) *UseCase {
	uc := NewUseCase(appts, services, checker, blocks, fakeTxManager{}, nil, nopLogger{})
	uc.timeProvider = &fixedClock{now: testNow}
	return uc
}

func TestExecute_HappyPath(t *testing.T) {
	appts := &fakeApptRepo{}
	checker := &fakeChecker{available: true}
	blocks := &fakeBlockManager{}
	uc := newTestUseCase(appts, &fakeServiceRepo{}, checker, blocks)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(101), resp.ID)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.NotEmpty(t, resp.ReservationToken)
	assert.Equal(t, testDate, resp.Date)
	assert.Equal(t, types.TimeString("10:00"), resp.StartTime)

	// Блокировка сессии снята, кеш даты сброшен
	assert.Equal(t, []string{"session-a"}, blocks.released)
	require.Len(t, checker.invalidated, 1)
	assert.Equal(t, testDate, checker.invalidated[0])
}

func TestExecute_SlotNotAvailable(t *testing.T) {
	appts := &fakeApptRepo{}
	blocks := &fakeBlockManager{}
	uc := newTestUseCase(appts, &fakeServiceRepo{}, &fakeChecker{available: false}, blocks)

	_, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Nil(t, appts.created)
	assert.Empty(t, blocks.released, "block survives a failed booking attempt")
}

func TestExecute_LostRaceOnUniqueIndex(t *testing.T) {
	// Проверка прошла, но вставка упёрлась в уникальный индекс -
	// конкурент успел первым
	appts := &fakeApptRepo{err: apptRepo.ErrSlotTaken}
	uc := newTestUseCase(appts, &fakeServiceRepo{}, &fakeChecker{available: true}, &fakeBlockManager{})

	_, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	services := &fakeServiceRepo{err: serviceRepo.ErrServiceNotFound}
	uc := newTestUseCase(&fakeApptRepo{}, services, &fakeChecker{available: true}, &fakeBlockManager{})

	_, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_PastDate(t *testing.T) {
	req := validRequest()
	req.Date = testNow.AddDate(0, 0, -1)

	uc := newTestUseCase(&fakeApptRepo{}, &fakeServiceRepo{}, &fakeChecker{available: true}, &fakeBlockManager{})

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_DomainCounters(t *testing.T) {
	recorder := &fakeMetrics{}
	uc := newTestUseCase(&fakeApptRepo{}, &fakeServiceRepo{}, &fakeChecker{available: true}, &fakeBlockManager{})
	uc.metrics = recorder

	_, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"pending"}, recorder.created)

	uc = newTestUseCase(&fakeApptRepo{}, &fakeServiceRepo{}, &fakeChecker{available: false}, &fakeBlockManager{})
	uc.metrics = recorder
	_, err = uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, []string{"precheck"}, recorder.conflicts)

	uc = newTestUseCase(&fakeApptRepo{err: apptRepo.ErrSlotTaken}, &fakeServiceRepo{}, &fakeChecker{available: true}, &fakeBlockManager{})
	uc.metrics = recorder
	_, err = uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, []string{"precheck", "unique_index"}, recorder.conflicts)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"empty name", func(r *Request) { r.CustomerName = "" }},
		{"bad email", func(r *Request) { r.CustomerEmail = "not-an-email" }},
		{"empty phone", func(r *Request) { r.CustomerPhone = "" }},
		{"zero service", func(r *Request) { r.ServiceID = 0 }},
		{"off-grid time", func(r *Request) { r.StartTime = "10:15" }},
		{"empty session", func(r *Request) { r.SessionID = "" }},
	}

	uc := newTestUseCase(&fakeApptRepo{}, &fakeServiceRepo{}, &fakeChecker{available: true}, &fakeBlockManager{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
