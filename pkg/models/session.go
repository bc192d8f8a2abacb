package models

import "time"

// SessionSnapshot is a resumable capture of an in-progress study session.
// One snapshot exists per mode; it is only trusted on reload when the
// (mode, collection, stage) key still matches what the caller asks for.
type SessionSnapshot struct {
	ID           string    `json:"id" db:"id"`
	Mode         StudyMode `json:"mode" db:"mode"`
	CollectionID int64     `json:"collection_id" db:"collection_id"`
	Stage        int       `json:"stage" db:"stage"` // 0 outside review mode
	WordIDs      []int64   `json:"word_ids"`
	Cursor       int       `json:"cursor" db:"cursor"` // in [0, len(WordIDs)]
	Studied      int       `json:"studied" db:"studied"`
	Correct      int       `json:"correct" db:"correct"`
	Wrong        int       `json:"wrong" db:"wrong"`
	AnswerShown  bool      `json:"answer_shown" db:"answer_shown"`
	// Outcomes records the per-word result within the running session.
	// Only review mode fills it; the review flow needs to know which words
	// are already mastered before the stage can complete.
	Outcomes  map[int64]Outcome `json:"outcomes,omitempty"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// Matches reports whether the snapshot belongs to the given session key.
func (s *SessionSnapshot) Matches(mode StudyMode, collectionID int64, stage int) bool {
	return s.Mode == mode && s.CollectionID == collectionID && s.Stage == stage
}

// Finished reports whether the cursor has passed the last word.
func (s *SessionSnapshot) Finished() bool {
	return s.Cursor >= len(s.WordIDs)
}
