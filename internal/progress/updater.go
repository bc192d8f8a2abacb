// Package progress applies study answers to persisted mastery records.
// Grading itself is delegated to the grader package; this package owns the
// get-or-create and persistence around it.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/lexibot/internal/database"
	"github.com/example/lexibot/internal/grader"
	"github.com/example/lexibot/pkg/models"
)

// WordStore resolves words so new mastery records can be attached to the
// right collection.
type WordStore interface {
	GetByID(ctx context.Context, id int64) (*models.Word, error)
}

// MasteryStore reads and writes mastery records.
type MasteryStore interface {
	GetByWord(ctx context.Context, wordID int64) (*models.MasteryRecord, error)
	Upsert(ctx context.Context, rec *models.MasteryRecord) error
}

// Update describes one answer to apply.
type Update struct {
	WordID  int64
	Outcome models.Outcome
	Mode    models.StudyMode
	// Latency is the response time; 0 when not measured.
	Latency time.Duration
	// Quality overrides the derived SM-2 quality. Zero and QualityUnset
	// both mean "derive from outcome and latency".
	Quality grader.Quality
	// At is the answer time; zero means time.Now().
	At time.Time
}

// Updater records study answers against mastery records.
type Updater struct {
	words   WordStore
	mastery MasteryStore
	grader  *grader.Grader
}

// NewUpdater creates an updater with the default grader tuning.
func NewUpdater(words WordStore, mastery MasteryStore) *Updater {
	return &Updater{words: words, mastery: mastery, grader: grader.New()}
}

// Apply records one answer: it loads or creates the word's mastery record,
// grades the answer into it and persists the result. The word must exist.
func (u *Updater) Apply(ctx context.Context, upd Update) (*models.MasteryRecord, error) {
	if !upd.Outcome.IsValid() {
		return nil, fmt.Errorf("progress: invalid outcome %q", upd.Outcome)
	}
	if upd.Quality == 0 {
		// The zero value means "not graded explicitly", same as QualityUnset.
		// An explicit blackout grade goes through the grader directly.
		upd.Quality = grader.QualityUnset
	}

	rec, err := u.mastery.GetByWord(ctx, upd.WordID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		w, werr := u.words.GetByID(ctx, upd.WordID)
		if werr != nil {
			return nil, fmt.Errorf("progress: word %d: %w", upd.WordID, werr)
		}
		rec = models.NewMasteryRecord(w.CollectionID, w.ID)
	case err != nil:
		return nil, fmt.Errorf("progress: load record for word %d: %w", upd.WordID, err)
	}

	at := upd.At
	if at.IsZero() {
		at = time.Now()
	}

	graded := u.grader.Grade(*rec, grader.Answer{
		Outcome: upd.Outcome,
		Latency: upd.Latency,
		Quality: upd.Quality,
		At:      at,
	})
	graded.LastOutcome = upd.Outcome
	if upd.Mode != "" {
		graded.LastMode = upd.Mode
	}
	graded.LastReviewedAt = at

	if err := u.mastery.Upsert(ctx, &graded); err != nil {
		return nil, fmt.Errorf("progress: persist record for word %d: %w", upd.WordID, err)
	}
	return &graded, nil
}

// ApplyBatch applies updates in order and returns the updated records in the
// same order. It stops at the first failure.
func (u *Updater) ApplyBatch(ctx context.Context, updates []Update) ([]*models.MasteryRecord, error) {
	out := make([]*models.MasteryRecord, 0, len(updates))
	for _, upd := range updates {
		rec, err := u.Apply(ctx, upd)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}
