package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/lexibot/pkg/models"
)

// SessionRepository persists session snapshots, one row per study mode.
// The snapshot body is stored as a JSON payload; validation of the payload
// against the requested session key happens in the session package.
type SessionRepository struct{}

// NewSessionRepository creates a new repository instance
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

// GetByMode returns the persisted snapshot for a mode, or nil when none exists.
func (r *SessionRepository) GetByMode(ctx context.Context, mode models.StudyMode) (*models.SessionSnapshot, error) {
	var payload string
	err := DB.QueryRowContext(ctx,
		DB.Rebind("SELECT payload FROM study_sessions WHERE mode = ?"), string(mode),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session snapshot: %w", err)
	}

	var snap models.SessionSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		// A payload we can no longer decode is treated as no snapshot,
		// never as something to repair.
		return nil, nil
	}
	return &snap, nil
}

// Upsert writes the snapshot for its mode, replacing any previous one.
func (r *SessionRepository) Upsert(ctx context.Context, snap *models.SessionSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}

	_, err = DB.ExecContext(ctx, DB.Rebind(`
		INSERT INTO study_sessions (mode, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (mode) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`),
		string(snap.Mode), string(payload), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session snapshot: %w", err)
	}
	return nil
}

// DeleteByMode removes a mode's snapshot. Removing an absent one is a no-op.
func (r *SessionRepository) DeleteByMode(ctx context.Context, mode models.StudyMode) error {
	_, err := DB.ExecContext(ctx,
		DB.Rebind("DELETE FROM study_sessions WHERE mode = ?"), string(mode))
	if err != nil {
		return fmt.Errorf("failed to delete session snapshot: %w", err)
	}
	return nil
}
