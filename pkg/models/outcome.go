package models

import "fmt"

// Outcome represents the result of a single answer during study.
type Outcome string

const (
	// OutcomeCorrect means the learner recalled the word.
	OutcomeCorrect Outcome = "correct"
	// OutcomeWrong means the learner failed to recall the word.
	OutcomeWrong Outcome = "wrong"
	// OutcomeSkip means the learner skipped the word without answering.
	OutcomeSkip Outcome = "skip"
)

// IsValid reports whether o is one of the known outcomes.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeCorrect, OutcomeWrong, OutcomeSkip:
		return true
	}
	return false
}

// MustValidate panics if o is not a known outcome. An unknown outcome is a
// programming error on the caller's side, not a runtime condition.
func (o Outcome) MustValidate() {
	if !o.IsValid() {
		panic(fmt.Sprintf("models: invalid outcome %q", string(o)))
	}
}
