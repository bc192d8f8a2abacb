package reviewlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lexibot/pkg/models"
)

// memStore mimics the single-row lock table, including the insert-if-absent
// race semantics.
type memStore struct {
	lock *models.ReviewLock
}

func (s *memStore) Get(ctx context.Context) (*models.ReviewLock, error) {
	if s.lock == nil {
		return nil, nil
	}
	cp := *s.lock
	return &cp, nil
}

func (s *memStore) InsertIfAbsent(ctx context.Context, lock *models.ReviewLock) (bool, error) {
	if s.lock != nil {
		return false, nil
	}
	cp := *lock
	s.lock = &cp
	return true, nil
}

func (s *memStore) Replace(ctx context.Context, lock *models.ReviewLock) error {
	cp := *lock
	s.lock = &cp
	return nil
}

func (s *memStore) Delete(ctx context.Context) error {
	s.lock = nil
	return nil
}

var lockNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTryAcquireFreeLock(t *testing.T) {
	m := NewManagerWithClock(&memStore{}, fixedClock(lockNow))

	result, lock, err := m.TryAcquire(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.Equal(t, Acquired, result)
	require.NotNil(t, lock)
	assert.Equal(t, int64(5), lock.CollectionID)
	assert.Equal(t, 2, lock.Stage)
	assert.Equal(t, lockNow, lock.LockedAt)
}

func TestTryAcquireHeldByOther(t *testing.T) {
	store := &memStore{lock: &models.ReviewLock{CollectionID: 5, Stage: 2, LockedAt: lockNow.Add(-time.Hour)}}
	m := NewManagerWithClock(store, fixedClock(lockNow))

	result, competing, err := m.TryAcquire(context.Background(), 9, 1)
	require.NoError(t, err)
	assert.Equal(t, HeldByOther, result)
	require.NotNil(t, competing)
	assert.Equal(t, int64(5), competing.CollectionID)

	// The stored lock is untouched.
	assert.Equal(t, int64(5), store.lock.CollectionID)
}

func TestTryAcquireHeldBySelf(t *testing.T) {
	store := &memStore{lock: &models.ReviewLock{CollectionID: 5, Stage: 2, LockedAt: lockNow.Add(-time.Hour)}}
	m := NewManagerWithClock(store, fixedClock(lockNow))

	result, _, err := m.TryAcquire(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.Equal(t, HeldBySelf, result)
}

func TestTryAcquireTakesOverStaleLock(t *testing.T) {
	store := &memStore{lock: &models.ReviewLock{CollectionID: 5, Stage: 2, LockedAt: lockNow.Add(-StaleAfter - time.Minute)}}
	m := NewManagerWithClock(store, fixedClock(lockNow))

	result, lock, err := m.TryAcquire(context.Background(), 9, 1)
	require.NoError(t, err)
	assert.Equal(t, Acquired, result)
	assert.Equal(t, int64(9), lock.CollectionID)
	assert.Equal(t, int64(9), store.lock.CollectionID)
}

func TestOnlyOneOfTwoCallersWins(t *testing.T) {
	store := &memStore{}
	m := NewManagerWithClock(store, fixedClock(lockNow))

	first, _, err := m.TryAcquire(context.Background(), 1, 1)
	require.NoError(t, err)
	second, competing, err := m.TryAcquire(context.Background(), 2, 1)
	require.NoError(t, err)

	assert.Equal(t, Acquired, first)
	assert.Equal(t, HeldByOther, second)
	assert.Equal(t, int64(1), competing.CollectionID)
}

func TestReleaseIsIdempotent(t *testing.T) {
	store := &memStore{}
	m := NewManagerWithClock(store, fixedClock(lockNow))

	_, _, err := m.TryAcquire(context.Background(), 1, 1)
	require.NoError(t, err)
	require.NoError(t, m.Release(context.Background()))
	require.NoError(t, m.Release(context.Background()))

	holder, err := m.Holder(context.Background())
	require.NoError(t, err)
	assert.Nil(t, holder)
}

func TestCanStart(t *testing.T) {
	store := &memStore{lock: &models.ReviewLock{CollectionID: 5, Stage: 2, LockedAt: lockNow.Add(-time.Hour)}}
	m := NewManagerWithClock(store, fixedClock(lockNow))

	ok, _, err := m.CanStart(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, ok, "same collection may continue")

	ok, competing, err := m.CanStart(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(5), competing.CollectionID)
}

func TestCanStartIgnoresStaleLock(t *testing.T) {
	store := &memStore{lock: &models.ReviewLock{CollectionID: 5, Stage: 2, LockedAt: lockNow.Add(-2 * StaleAfter)}}
	m := NewManagerWithClock(store, fixedClock(lockNow))

	ok, _, err := m.CanStart(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, ok)
}
