// Package session saves and restores in-progress study sessions. One
// snapshot exists per study mode. A snapshot is only resumed when its
// (mode, collection, stage) key matches the session being started; anything
// else, including an undecodable payload, counts as no snapshot.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/lexibot/pkg/models"
)

// SnapshotStore is the persistence slice the manager needs.
type SnapshotStore interface {
	GetByMode(ctx context.Context, mode models.StudyMode) (*models.SessionSnapshot, error)
	Upsert(ctx context.Context, snap *models.SessionSnapshot) error
	DeleteByMode(ctx context.Context, mode models.StudyMode) error
}

// WordStore resolves word IDs so restored sessions drop deleted words.
type WordStore interface {
	GetByIDs(ctx context.Context, ids []int64) ([]models.Word, error)
}

// Manager saves and restores session snapshots.
type Manager struct {
	store SnapshotStore
	words WordStore
}

// NewManager creates a session manager over the given stores.
func NewManager(store SnapshotStore, words WordStore) *Manager {
	return &Manager{store: store, words: words}
}

// Begin creates a fresh snapshot for a session over the given words.
func (m *Manager) Begin(mode models.StudyMode, collectionID int64, stage int, wordIDs []int64) *models.SessionSnapshot {
	snap := &models.SessionSnapshot{
		ID:           uuid.NewString(),
		Mode:         mode,
		CollectionID: collectionID,
		Stage:        stage,
		WordIDs:      append([]int64(nil), wordIDs...),
		UpdatedAt:    time.Now(),
	}
	if mode == models.ModeReview {
		snap.Outcomes = make(map[int64]models.Outcome)
	}
	return snap
}

// Save persists the snapshot, replacing any previous one for its mode.
func (m *Manager) Save(ctx context.Context, snap *models.SessionSnapshot) error {
	if !snap.Mode.IsValid() {
		return fmt.Errorf("session: invalid mode %q", snap.Mode)
	}
	snap.UpdatedAt = time.Now()
	if err := m.store.Upsert(ctx, snap); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// Load restores the snapshot for a session key. It returns nil when no
// usable snapshot exists: none stored, key mismatch, or every remaining
// word has been deleted since the snapshot was taken. Deleted words are
// filtered out and the cursor adjusted so the caller resumes cleanly.
func (m *Manager) Load(ctx context.Context, mode models.StudyMode, collectionID int64, stage int) (*models.SessionSnapshot, error) {
	snap, err := m.store.GetByMode(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	if snap == nil || !snap.Matches(mode, collectionID, stage) {
		return nil, nil
	}
	if len(snap.WordIDs) == 0 {
		return nil, nil
	}

	alive, err := m.aliveWordIDs(ctx, snap.WordIDs)
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	if len(alive) == 0 {
		// Nothing left to study; the stored snapshot is useless now.
		if err := m.store.DeleteByMode(ctx, mode); err != nil {
			return nil, fmt.Errorf("session: drop empty snapshot: %w", err)
		}
		return nil, nil
	}

	// Keep the cursor pointing past the same number of surviving words it
	// had already passed.
	passed := 0
	for i, id := range snap.WordIDs {
		if i >= snap.Cursor {
			break
		}
		if alive[id] {
			passed++
		}
	}

	filtered := snap.WordIDs[:0:0]
	for _, id := range snap.WordIDs {
		if alive[id] {
			filtered = append(filtered, id)
		}
	}
	snap.WordIDs = filtered
	snap.Cursor = passed
	if snap.Outcomes != nil {
		for id := range snap.Outcomes {
			if !alive[id] {
				delete(snap.Outcomes, id)
			}
		}
	}
	return snap, nil
}

// Clear removes the snapshot for a mode, typically on session completion.
func (m *Manager) Clear(ctx context.Context, mode models.StudyMode) error {
	if err := m.store.DeleteByMode(ctx, mode); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

func (m *Manager) aliveWordIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	words, err := m.words.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	alive := make(map[int64]bool, len(words))
	for _, w := range words {
		alive[w.ID] = true
	}
	return alive, nil
}
