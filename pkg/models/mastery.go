package models

import "time"

// Mastery record defaults shared by every call site that lazily creates a
// record. Keeping them in one constructor prevents defaults from drifting
// between the schedulers and the progress updater.
const (
	// DefaultEaseFactor is the SM-2 starting easiness factor.
	DefaultEaseFactor = 2.5
	// MinEaseFactor is the floor below which the interval curve degenerates.
	MinEaseFactor = 1.3
)

// MasteryRecord tracks a single word's spaced-repetition state within its
// owning collection.
type MasteryRecord struct {
	ID             int64     `json:"id" db:"id"`
	CollectionID   int64     `json:"collection_id" db:"collection_id"`
	WordID         int64     `json:"word_id" db:"word_id"`
	EaseFactor     float64   `json:"ease_factor" db:"ease_factor"`
	IntervalDays   int       `json:"interval_days" db:"interval_days"`
	Repetitions    int       `json:"repetitions" db:"repetitions"` // consecutive successful reviews
	TimesSeen      int       `json:"times_seen" db:"times_seen"`
	TimesCorrect   int       `json:"times_correct" db:"times_correct"`
	CorrectStreak  int       `json:"correct_streak" db:"correct_streak"`
	WrongStreak    int       `json:"wrong_streak" db:"wrong_streak"`
	FastResponses  int       `json:"fast_responses" db:"fast_responses"`
	SlowResponses  int       `json:"slow_responses" db:"slow_responses"`
	LastOutcome    Outcome   `json:"last_outcome" db:"last_outcome"`
	LastMode       StudyMode `json:"last_mode" db:"last_mode"`
	LastReviewedAt time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	NextDueAt      time.Time `json:"next_due_at" db:"next_due_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// NewMasteryRecord returns a fresh record for a word that has never been
// answered. This is the only place default values live.
func NewMasteryRecord(collectionID, wordID int64) *MasteryRecord {
	now := time.Now()
	return &MasteryRecord{
		CollectionID: collectionID,
		WordID:       wordID,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Seen reports whether the word has ever been answered or skipped.
func (r *MasteryRecord) Seen() bool {
	return r.TimesSeen > 0
}

// IsDue reports whether the word's next review time has arrived. A word
// that has never been answered has no due time yet and is not due; it
// enters the rotation through flashcards instead.
func (r *MasteryRecord) IsDue(now time.Time) bool {
	return r.TimesSeen > 0 && !now.Before(r.NextDueAt)
}
