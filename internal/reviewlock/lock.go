// Package reviewlock coordinates the single in-progress review flow.
// The lock is cooperative: it does not fence database writes, it only lets
// callers agree that one collection's review is running and others should
// wait. Acquisition goes through an insert-if-absent so two racing callers
// can never both win.
package reviewlock

import (
	"context"
	"fmt"
	"time"

	"github.com/example/lexibot/pkg/models"
)

// StaleAfter is the age at which a held lock is presumed abandoned, for
// example after a crash mid-review, and may be taken over. A day comfortably
// exceeds any real review session while still freeing a wedged lock without
// manual intervention.
const StaleAfter = 24 * time.Hour

// LockStore is the persistence slice the manager needs.
type LockStore interface {
	Get(ctx context.Context) (*models.ReviewLock, error)
	InsertIfAbsent(ctx context.Context, lock *models.ReviewLock) (bool, error)
	Replace(ctx context.Context, lock *models.ReviewLock) error
	Delete(ctx context.Context) error
}

// AcquireResult says how a TryAcquire attempt ended.
type AcquireResult int

const (
	// Acquired means the caller now holds the lock.
	Acquired AcquireResult = iota
	// HeldBySelf means the same collection and stage already hold the lock.
	HeldBySelf
	// HeldByOther means a different review holds a live lock.
	HeldByOther
)

func (r AcquireResult) String() string {
	switch r {
	case Acquired:
		return "acquired"
	case HeldBySelf:
		return "held by self"
	case HeldByOther:
		return "held by other"
	default:
		return fmt.Sprintf("AcquireResult(%d)", int(r))
	}
}

// Manager mediates access to the persisted review lock.
type Manager struct {
	store LockStore
	now   func() time.Time
}

// NewManager creates a lock manager over the given store.
func NewManager(store LockStore) *Manager {
	return &Manager{store: store, now: time.Now}
}

// NewManagerWithClock creates a manager with a caller-supplied clock, which
// tests use to age locks.
func NewManagerWithClock(store LockStore, now func() time.Time) *Manager {
	return &Manager{store: store, now: now}
}

// TryAcquire attempts to take the lock for a collection and stage. On
// HeldByOther the competing lock is returned so callers can report who
// holds it. A lock older than StaleAfter is treated as abandoned and taken
// over.
func (m *Manager) TryAcquire(ctx context.Context, collectionID int64, stage int) (AcquireResult, *models.ReviewLock, error) {
	want := &models.ReviewLock{
		CollectionID: collectionID,
		Stage:        stage,
		LockedAt:     m.now(),
	}

	won, err := m.store.InsertIfAbsent(ctx, want)
	if err != nil {
		return HeldByOther, nil, fmt.Errorf("reviewlock: acquire: %w", err)
	}
	if won {
		return Acquired, want, nil
	}

	held, err := m.store.Get(ctx)
	if err != nil {
		return HeldByOther, nil, fmt.Errorf("reviewlock: read holder: %w", err)
	}
	if held == nil {
		// The holder released between our insert and read; one retry is
		// enough, the next caller wins at most once more.
		won, err = m.store.InsertIfAbsent(ctx, want)
		if err != nil || !won {
			return HeldByOther, nil, err
		}
		return Acquired, want, nil
	}

	if held.CollectionID == collectionID && held.Stage == stage {
		return HeldBySelf, held, nil
	}

	if held.Age(m.now()) > StaleAfter {
		if err := m.store.Replace(ctx, want); err != nil {
			return HeldByOther, held, fmt.Errorf("reviewlock: take over stale lock: %w", err)
		}
		return Acquired, want, nil
	}

	return HeldByOther, held, nil
}

// Release drops the lock. Releasing when no lock is held is a no-op.
func (m *Manager) Release(ctx context.Context) error {
	if err := m.store.Delete(ctx); err != nil {
		return fmt.Errorf("reviewlock: release: %w", err)
	}
	return nil
}

// Holder returns the current lock, or nil when none is held. Stale locks
// are still reported; only TryAcquire takes them over.
func (m *Manager) Holder(ctx context.Context) (*models.ReviewLock, error) {
	lock, err := m.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("reviewlock: read holder: %w", err)
	}
	return lock, nil
}

// CanStart reports whether a review for the collection may start: yes when
// no live lock exists or the same collection already holds it. On refusal
// the competing lock is returned.
func (m *Manager) CanStart(ctx context.Context, collectionID int64) (bool, *models.ReviewLock, error) {
	lock, err := m.store.Get(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("reviewlock: read holder: %w", err)
	}
	if lock == nil || lock.CollectionID == collectionID {
		return true, lock, nil
	}
	if lock.Age(m.now()) > StaleAfter {
		return true, lock, nil
	}
	return false, lock, nil
}
