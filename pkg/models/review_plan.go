package models

import "time"

// Review curve boundaries. Stages follow the Ebbinghaus forgetting curve;
// the interval table itself lives in the reviewcurve package.
const (
	FirstReviewStage = 1
	LastReviewStage  = 8
)

// ReviewPlan drives a word collection through the 8-stage review curve.
// A collection may own several plans when cohorts of words were learned at
// different times; WordIDs enumerates the cohort when that applies.
type ReviewPlan struct {
	ID              int64      `json:"id" db:"id"`
	CollectionID    int64      `json:"collection_id" db:"collection_id"`
	Stage           int        `json:"stage" db:"stage"` // 1..8
	NextReviewAt    time.Time  `json:"next_review_at" db:"next_review_at"`
	CompletedStages []int      `json:"completed_stages"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	LastCompletedAt *time.Time `json:"last_completed_at" db:"last_completed_at"`
	IsCompleted     bool       `json:"is_completed" db:"is_completed"`
	TotalWords      int        `json:"total_words" db:"total_words"`
	WordIDs         []int64    `json:"word_ids,omitempty"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// HasCohort reports whether the plan governs an explicit list of words
// rather than the whole collection.
func (p *ReviewPlan) HasCohort() bool {
	return len(p.WordIDs) > 0
}

// HasCompletedStage reports whether stage is already recorded as completed.
func (p *ReviewPlan) HasCompletedStage(stage int) bool {
	for _, s := range p.CompletedStages {
		if s == stage {
			return true
		}
	}
	return false
}
