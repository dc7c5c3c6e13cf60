package tempblocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	storage "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/tempblocks"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var testDate = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
var testNow = testDate.Add(12 * time.Hour)

// fakeBlockRepo хранит блокировки в памяти, имитируя expiry-фильтры репозитория
type fakeBlockRepo struct {
	blocks []*domain.TemporaryBlock
}

func (r *fakeBlockRepo) Create(_ context.Context, block *domain.TemporaryBlock) (*domain.TemporaryBlock, error) {
	r.blocks = append(r.blocks, block)
	return block, nil
}

func (r *fakeBlockRepo) GetActiveBySession(_ context.Context, sessionID string, now time.Time) (*domain.TemporaryBlock, error) {
	for _, b := range r.blocks {
		if b.SessionID == sessionID && !b.IsExpired(now) {
			return b, nil
		}
	}
	return nil, storage.ErrBlockNotFound
}

func (r *fakeBlockRepo) ExtendBySession(_ context.Context, sessionID string, now, expiresAt time.Time) error {
	extended := false
	for _, b := range r.blocks {
		if b.SessionID == sessionID && !b.IsExpired(now) {
			b.ExpiresAt = expiresAt
			extended = true
		}
	}
	if !extended {
		return storage.ErrBlockNotFound
	}
	return nil
}

func (r *fakeBlockRepo) DeleteBySession(_ context.Context, sessionID string) error {
	kept := r.blocks[:0]
	for _, b := range r.blocks {
		if b.SessionID != sessionID {
			kept = append(kept, b)
		}
	}
	r.blocks = kept
	return nil
}

func (r *fakeBlockRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var deleted int64
	kept := r.blocks[:0]
	for _, b := range r.blocks {
		if b.IsExpired(now) {
			deleted++
			continue
		}
		kept = append(kept, b)
	}
	r.blocks = kept
	return deleted, nil
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

type fakeServiceRepo struct {
	services []*domain.Service
}

func (r *fakeServiceRepo) List(_ context.Context) ([]*domain.Service, error) {
	return r.services, nil
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestManager(repo *fakeBlockRepo, checker *fakeChecker) *Manager {
	services := &fakeServiceRepo{services: []*domain.Service{{ID: 1, DurationMinutes: 30}}}
	m := NewManager(repo, checker, services, nopLogger{})
	m.timeProvider = &fixedClock{now: testNow}
	return m
}

func TestCreate_HappyPath(t *testing.T) {
	repo := &fakeBlockRepo{}
	checker := &fakeChecker{available: true}
	m := newTestManager(repo, checker)

	block, err := m.Create(context.Background(), "session-a", testDate, "10:00")
	require.NoError(t, err)

	assert.NotEmpty(t, block.ID)
	assert.Equal(t, "session-a", block.SessionID)
	assert.Equal(t, types.TimeString("10:00"), block.Time)
	assert.Equal(t, testNow.Add(domain.TempBlockTTL), block.ExpiresAt)
	assert.Len(t, checker.invalidated, 1)
}

func TestCreate_ReplacesOwnBlock(t *testing.T) {
	repo := &fakeBlockRepo{}
	checker := &fakeChecker{available: true}
	m := newTestManager(repo, checker)
	ctx := context.Background()

	_, err := m.Create(ctx, "session-a", testDate, "10:00")
	require.NoError(t, err)
	second, err := m.Create(ctx, "session-a", testDate, "11:00")
	require.NoError(t, err)

	// У сессии ровно одна активная блокировка - последняя
	require.Len(t, repo.blocks, 1)
	assert.Equal(t, second.ID, repo.blocks[0].ID)
	assert.Equal(t, types.TimeString("11:00"), repo.blocks[0].Time)
}

func TestCreate_SlotNotAvailable(t *testing.T) {
	repo := &fakeBlockRepo{}
	m := newTestManager(repo, &fakeChecker{available: false})

	_, err := m.Create(context.Background(), "session-a", testDate, "10:00")
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Empty(t, repo.blocks)
}

func TestCreate_EmptyCatalogue(t *testing.T) {
	m := NewManager(&fakeBlockRepo{}, &fakeChecker{available: true}, &fakeServiceRepo{}, nopLogger{})
	m.timeProvider = &fixedClock{now: testNow}

	_, err := m.Create(context.Background(), "session-a", testDate, "10:00")
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestCreate_SweepsExpiredBlocks(t *testing.T) {
	repo := &fakeBlockRepo{blocks: []*domain.TemporaryBlock{{
		ID: "stale", Date: testDate, Time: "09:00", SessionID: "session-x",
		ExpiresAt: testNow.Add(-time.Minute),
	}}}
	m := newTestManager(repo, &fakeChecker{available: true})

	_, err := m.Create(context.Background(), "session-a", testDate, "10:00")
	require.NoError(t, err)

	require.Len(t, repo.blocks, 1)
	assert.Equal(t, "session-a", repo.blocks[0].SessionID)
}

func TestExtend(t *testing.T) {
	repo := &fakeBlockRepo{}
	m := newTestManager(repo, &fakeChecker{available: true})
	ctx := context.Background()

	_, err := m.Create(ctx, "session-a", testDate, "10:00")
	require.NoError(t, err)

	extended, err := m.Extend(ctx, "session-a")
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(domain.TempBlockTTL), extended.ExpiresAt)

	_, err = m.Extend(ctx, "session-b")
	assert.ErrorIs(t, err, ErrNoActiveBlock)
}

func TestRelease_Idempotent(t *testing.T) {
	repo := &fakeBlockRepo{}
	checker := &fakeChecker{available: true}
	m := newTestManager(repo, checker)
	ctx := context.Background()

	_, err := m.Create(ctx, "session-a", testDate, "10:00")
	require.NoError(t, err)

	require.NoError(t, m.Release(ctx, "session-a"))
	assert.Empty(t, repo.blocks)

	// Повторный и посторонний release - не ошибка
	require.NoError(t, m.Release(ctx, "session-a"))
	require.NoError(t, m.Release(ctx, "never-held"))
}

func TestCleanupExpired(t *testing.T) {
	repo := &fakeBlockRepo{blocks: []*domain.TemporaryBlock{
		{ID: "old", SessionID: "a", Date: testDate, ExpiresAt: testNow.Add(-time.Minute)},
		{ID: "live", SessionID: "b", Date: testDate, ExpiresAt: testNow.Add(time.Minute)},
	}}
	m := newTestManager(repo, &fakeChecker{})

	deleted, err := m.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	require.Len(t, repo.blocks, 1)
	assert.Equal(t, "live", repo.blocks[0].ID)
}
