package models

// StudyMode identifies which study flow produced an answer or a session.
type StudyMode string

const (
	// ModeFlashcard is the free browsing mode with self-graded cards.
	ModeFlashcard StudyMode = "flashcard"
	// ModeTest is the multiple-choice test mode.
	ModeTest StudyMode = "test"
	// ModeReview is the interval-based review mode driven by review plans.
	ModeReview StudyMode = "review"
)

// IsValid reports whether m is one of the known study modes.
func (m StudyMode) IsValid() bool {
	switch m {
	case ModeFlashcard, ModeTest, ModeReview:
		return true
	}
	return false
}
