// Package reviewcurve owns the 8-stage Ebbinghaus review curve a word
// collection moves through. All functions here are pure; loading and storing
// plans is the caller's concern.
package reviewcurve

import (
	"fmt"
	"math"
	"time"

	"github.com/example/lexibot/pkg/models"
)

// stageIntervals maps a review stage to the delay before that stage's
// review becomes due, counted from the completion of the previous stage.
var stageIntervals = map[int]time.Duration{
	1: time.Hour,
	2: 24 * time.Hour,
	3: 2 * 24 * time.Hour,
	4: 4 * 24 * time.Hour,
	5: 7 * 24 * time.Hour,
	6: 15 * 24 * time.Hour,
	7: 30 * 24 * time.Hour,
	8: 60 * 24 * time.Hour,
}

// maxUrgencyOverdueDays is where urgency saturates at 1.
const maxUrgencyOverdueDays = 30.0

// StageInterval returns the due interval for a stage. A stage outside [1,8]
// is a programming error and panics.
func StageInterval(stage int) time.Duration {
	d, ok := stageIntervals[stage]
	if !ok {
		panic(fmt.Sprintf("reviewcurve: stage %d outside [%d,%d]", stage, models.FirstReviewStage, models.LastReviewStage))
	}
	return d
}

// NewPlan initializes a review plan at stage 1. The first review comes due
// one hour after the words were learned.
func NewPlan(collectionID int64, totalWords int, startedAt time.Time) *models.ReviewPlan {
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	return &models.ReviewPlan{
		CollectionID: collectionID,
		Stage:        models.FirstReviewStage,
		NextReviewAt: startedAt.Add(StageInterval(models.FirstReviewStage)),
		StartedAt:    startedAt,
		TotalWords:   totalWords,
		CreatedAt:    startedAt,
		UpdatedAt:    startedAt,
	}
}

// Advance moves a plan to its next stage after a review session ended with
// all words mastered. A completed plan is returned untouched, so advancing
// twice past the last stage never duplicates stage 8 in CompletedStages.
func Advance(plan models.ReviewPlan, completedAt time.Time) models.ReviewPlan {
	if plan.IsCompleted {
		return plan
	}
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	if !plan.HasCompletedStage(plan.Stage) {
		plan.CompletedStages = append(append([]int(nil), plan.CompletedStages...), plan.Stage)
	}
	plan.LastCompletedAt = &completedAt
	plan.UpdatedAt = completedAt

	if plan.Stage >= models.LastReviewStage {
		plan.Stage = models.LastReviewStage
		plan.IsCompleted = true
		return plan
	}

	plan.Stage++
	plan.NextReviewAt = completedAt.Add(StageInterval(plan.Stage))
	return plan
}

// IsDue reports whether the plan's next review time has arrived.
func IsDue(plan *models.ReviewPlan, now time.Time) bool {
	if plan.IsCompleted {
		return false
	}
	return !now.Before(plan.NextReviewAt)
}

// Urgency scores how overdue a plan is, in [0,1]. Not-due plans score 0;
// days overdue are log-compressed so a plan 30+ days late pins at 1 instead
// of growing without bound.
func Urgency(plan *models.ReviewPlan, now time.Time) float64 {
	if !IsDue(plan, now) {
		return 0
	}
	overdueDays := now.Sub(plan.NextReviewAt).Hours() / 24.0
	u := math.Log1p(overdueDays) / math.Log1p(maxUrgencyOverdueDays)
	if u > 1 {
		return 1
	}
	if u < 0 {
		return 0
	}
	return u
}
