package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/lexibot/pkg/models"
)

// LockRepository owns the single review_lock row. The lock lives in its own
// table rather than inside the settings blob so unrelated settings writes
// can never clobber it.
type LockRepository struct{}

// NewLockRepository creates a new repository instance
func NewLockRepository() *LockRepository {
	return &LockRepository{}
}

type lockRow struct {
	ID           int64     `db:"id"`
	CollectionID int64     `db:"collection_id"`
	Stage        int       `db:"stage"`
	LockedAt     time.Time `db:"locked_at"`
}

// Get returns the current lock, or nil when no review is in progress.
func (r *LockRepository) Get(ctx context.Context) (*models.ReviewLock, error) {
	var row lockRow
	err := DB.GetContext(ctx, &row, "SELECT * FROM review_lock WHERE id = 1")
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review lock: %w", err)
	}
	return &models.ReviewLock{
		CollectionID: row.CollectionID,
		Stage:        row.Stage,
		LockedAt:     row.LockedAt,
	}, nil
}

// InsertIfAbsent writes the lock row only when none exists. The returned
// bool reports whether the row was written; false means another lock holds.
func (r *LockRepository) InsertIfAbsent(ctx context.Context, lock *models.ReviewLock) (bool, error) {
	result, err := DB.ExecContext(ctx, DB.Rebind(`
		INSERT INTO review_lock (id, collection_id, stage, locked_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`),
		lock.CollectionID, lock.Stage, lock.LockedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert review lock: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// Replace overwrites the lock row unconditionally. Callers use it only after
// deciding the existing lock may be taken over.
func (r *LockRepository) Replace(ctx context.Context, lock *models.ReviewLock) error {
	_, err := DB.ExecContext(ctx, DB.Rebind(`
		INSERT INTO review_lock (id, collection_id, stage, locked_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			collection_id = excluded.collection_id,
			stage = excluded.stage,
			locked_at = excluded.locked_at`),
		lock.CollectionID, lock.Stage, lock.LockedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to replace review lock: %w", err)
	}
	return nil
}

// Delete removes the lock row. Deleting an absent lock is a no-op.
func (r *LockRepository) Delete(ctx context.Context) error {
	_, err := DB.ExecContext(ctx, "DELETE FROM review_lock WHERE id = 1")
	if err != nil {
		return fmt.Errorf("failed to delete review lock: %w", err)
	}
	return nil
}
