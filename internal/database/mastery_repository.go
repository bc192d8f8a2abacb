package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/lexibot/pkg/models"
)

// MasteryRepository handles database operations for mastery records.
// All mutation goes through Upsert; the progress updater is the only caller.
type MasteryRepository struct{}

// NewMasteryRepository creates a new repository instance
func NewMasteryRepository() *MasteryRepository {
	return &MasteryRepository{}
}

// GetByWord returns the mastery record for a word, or ErrNotFound.
func (r *MasteryRepository) GetByWord(ctx context.Context, wordID int64) (*models.MasteryRecord, error) {
	var rec models.MasteryRecord
	err := DB.GetContext(ctx, &rec, DB.Rebind("SELECT * FROM mastery_records WHERE word_id = ?"), wordID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mastery record: %w", err)
	}
	return &rec, nil
}

// GetByWords returns the records for the given word IDs keyed by word ID.
// Words with no record are simply absent from the map.
func (r *MasteryRepository) GetByWords(ctx context.Context, wordIDs []int64) (map[int64]*models.MasteryRecord, error) {
	result := make(map[int64]*models.MasteryRecord, len(wordIDs))
	if len(wordIDs) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In("SELECT * FROM mastery_records WHERE word_id IN (?)", wordIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	var recs []models.MasteryRecord
	if err := DB.SelectContext(ctx, &recs, DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get mastery records: %w", err)
	}
	for i := range recs {
		rec := recs[i]
		result[rec.WordID] = &rec
	}
	return result, nil
}

// GetByCollection returns all records scoped to a collection.
func (r *MasteryRepository) GetByCollection(ctx context.Context, collectionID int64) ([]models.MasteryRecord, error) {
	var recs []models.MasteryRecord
	err := DB.SelectContext(ctx, &recs,
		DB.Rebind("SELECT * FROM mastery_records WHERE collection_id = ?"), collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mastery records by collection: %w", err)
	}
	return recs, nil
}

// Upsert creates or replaces the record for its word.
func (r *MasteryRepository) Upsert(ctx context.Context, rec *models.MasteryRecord) error {
	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO mastery_records (
				collection_id, word_id, ease_factor, interval_days, repetitions,
				times_seen, times_correct, correct_streak, wrong_streak,
				fast_responses, slow_responses, last_outcome, last_mode,
				last_reviewed_at, next_due_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (word_id) DO UPDATE SET
				ease_factor = EXCLUDED.ease_factor,
				interval_days = EXCLUDED.interval_days,
				repetitions = EXCLUDED.repetitions,
				times_seen = EXCLUDED.times_seen,
				times_correct = EXCLUDED.times_correct,
				correct_streak = EXCLUDED.correct_streak,
				wrong_streak = EXCLUDED.wrong_streak,
				fast_responses = EXCLUDED.fast_responses,
				slow_responses = EXCLUDED.slow_responses,
				last_outcome = EXCLUDED.last_outcome,
				last_mode = EXCLUDED.last_mode,
				last_reviewed_at = EXCLUDED.last_reviewed_at,
				next_due_at = EXCLUDED.next_due_at,
				updated_at = NOW()
			RETURNING id, created_at, updated_at
		`
		return DB.QueryRowContext(ctx, query,
			rec.CollectionID, rec.WordID, rec.EaseFactor, rec.IntervalDays, rec.Repetitions,
			rec.TimesSeen, rec.TimesCorrect, rec.CorrectStreak, rec.WrongStreak,
			rec.FastResponses, rec.SlowResponses, rec.LastOutcome, rec.LastMode,
			rec.LastReviewedAt, rec.NextDueAt,
		).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	}

	// SQLite upsert, then read back the generated columns.
	_, err := DB.ExecContext(ctx, `
		INSERT INTO mastery_records (
			collection_id, word_id, ease_factor, interval_days, repetitions,
			times_seen, times_correct, correct_streak, wrong_streak,
			fast_responses, slow_responses, last_outcome, last_mode,
			last_reviewed_at, next_due_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (word_id) DO UPDATE SET
			ease_factor = excluded.ease_factor,
			interval_days = excluded.interval_days,
			repetitions = excluded.repetitions,
			times_seen = excluded.times_seen,
			times_correct = excluded.times_correct,
			correct_streak = excluded.correct_streak,
			wrong_streak = excluded.wrong_streak,
			fast_responses = excluded.fast_responses,
			slow_responses = excluded.slow_responses,
			last_outcome = excluded.last_outcome,
			last_mode = excluded.last_mode,
			last_reviewed_at = excluded.last_reviewed_at,
			next_due_at = excluded.next_due_at,
			updated_at = CURRENT_TIMESTAMP`,
		rec.CollectionID, rec.WordID, rec.EaseFactor, rec.IntervalDays, rec.Repetitions,
		rec.TimesSeen, rec.TimesCorrect, rec.CorrectStreak, rec.WrongStreak,
		rec.FastResponses, rec.SlowResponses, rec.LastOutcome, rec.LastMode,
		rec.LastReviewedAt, rec.NextDueAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert mastery record: %w", err)
	}
	return DB.QueryRowContext(ctx,
		"SELECT id, created_at, updated_at FROM mastery_records WHERE word_id = ?", rec.WordID,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

// DeleteByWord removes the record belonging to a word.
func (r *MasteryRepository) DeleteByWord(ctx context.Context, wordID int64) error {
	_, err := DB.ExecContext(ctx, DB.Rebind("DELETE FROM mastery_records WHERE word_id = ?"), wordID)
	if err != nil {
		return fmt.Errorf("failed to delete mastery record: %w", err)
	}
	return nil
}
