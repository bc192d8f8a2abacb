package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/lexibot/internal/weight"
	"github.com/example/lexibot/pkg/models"
)

// ReviewOptions extends the shared options for review scheduling.
type ReviewOptions struct {
	Options
	// OnlyDue limits candidates to words whose next-due time has arrived.
	OnlyDue bool
	// Plan, when set with a word cohort, restricts candidates to that
	// cohort's unmastered members instead of a due query.
	Plan *models.ReviewPlan
	// Now substitutes the due-check clock; zero means time.Now().
	Now time.Time
}

// ReviewResult carries the ordered list plus the total due count, which the
// caller needs even when the list itself is capped.
type ReviewResult struct {
	WordIDs  []int64
	DueCount int
}

// ReviewScheduler builds word lists for interval-based review sessions.
type ReviewScheduler struct {
	words   WordStore
	mastery MasteryStore
}

// NewReviewScheduler creates a review scheduler over the given stores.
func NewReviewScheduler(words WordStore, mastery MasteryStore) *ReviewScheduler {
	return &ReviewScheduler{words: words, mastery: mastery}
}

// Schedule returns the ordered review list, least-recently-reviewed first.
func (s *ReviewScheduler) Schedule(ctx context.Context, opts ReviewOptions) (ReviewResult, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	pool, err := s.pool(ctx, opts)
	if err != nil {
		return ReviewResult{}, fmt.Errorf("review scheduler: %w", err)
	}

	var selected []weight.Scored
	for _, c := range pool {
		if opts.Plan != nil && opts.Plan.HasCohort() {
			// Cohort mode: every unmastered member is a candidate.
			if !isMastered(c) {
				selected = append(selected, c)
			}
			continue
		}
		if opts.OnlyDue && !isDue(c.Record, now) {
			continue
		}
		selected = append(selected, c)
	}
	if len(selected) == 0 {
		return ReviewResult{}, nil
	}

	// Least recently reviewed first; never-reviewed words lead.
	sort.SliceStable(selected, func(i, j int) bool {
		ti, tj := lastReviewed(selected[i].Record), lastReviewed(selected[j].Record)
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return selected[i].WordID < selected[j].WordID
	})

	ids := make([]int64, len(selected))
	for i, c := range selected {
		ids[i] = c.WordID
	}
	return ReviewResult{
		WordIDs:  capIDs(ids, opts.Limit),
		DueCount: len(selected),
	}, nil
}

// pool loads candidates either from the plan's cohort or from the
// collection/global pool.
func (s *ReviewScheduler) pool(ctx context.Context, opts ReviewOptions) ([]weight.Scored, error) {
	if opts.Plan != nil && opts.Plan.HasCohort() {
		words, err := s.words.GetByIDs(ctx, opts.Plan.WordIDs)
		if err != nil {
			return nil, err
		}
		if len(words) == 0 {
			return nil, nil
		}
		ids := make([]int64, len(words))
		for i, w := range words {
			ids[i] = w.ID
		}
		records, err := s.mastery.GetByWords(ctx, ids)
		if err != nil {
			return nil, err
		}
		scored := make([]weight.Scored, len(words))
		for i, w := range words {
			rec := records[w.ID]
			scored[i] = weight.Scored{WordID: w.ID, Record: rec, Score: weight.Compute(rec)}
		}
		return scored, nil
	}

	scored, _, err := candidates(ctx, s.words, s.mastery, opts.CollectionID)
	return scored, err
}

func isDue(rec *models.MasteryRecord, now time.Time) bool {
	if rec == nil {
		// Never-seen words have no due time yet; review mode skips them.
		return false
	}
	return rec.IsDue(now)
}

func lastReviewed(rec *models.MasteryRecord) time.Time {
	if rec == nil {
		return time.Time{}
	}
	return rec.LastReviewedAt
}
