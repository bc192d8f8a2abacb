package reviewcurve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func TestNewPlanFirstReviewOneHourOut(t *testing.T) {
	plan := NewPlan(5, 10, start)

	assert.Equal(t, int64(5), plan.CollectionID)
	assert.Equal(t, 1, plan.Stage)
	assert.Equal(t, 10, plan.TotalWords)
	assert.Equal(t, start.Add(time.Hour), plan.NextReviewAt)
	assert.False(t, plan.IsCompleted)
	assert.Empty(t, plan.CompletedStages)
}

func TestStageIntervalTable(t *testing.T) {
	day := 24 * time.Hour
	want := map[int]time.Duration{
		1: time.Hour, 2: day, 3: 2 * day, 4: 4 * day,
		5: 7 * day, 6: 15 * day, 7: 30 * day, 8: 60 * day,
	}
	for stage, d := range want {
		assert.Equal(t, d, StageInterval(stage), "stage %d", stage)
	}
}

func TestStageIntervalPanicsOutsideRange(t *testing.T) {
	assert.Panics(t, func() { StageInterval(0) })
	assert.Panics(t, func() { StageInterval(9) })
}

func TestAdvanceThroughAllStages(t *testing.T) {
	plan := *NewPlan(7, 12, start)

	at := start
	for i := 0; i < 8; i++ {
		at = plan.NextReviewAt // simulate the interval elapsing
		plan = Advance(plan, at)
	}

	assert.Equal(t, 8, plan.Stage)
	assert.True(t, plan.IsCompleted)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, plan.CompletedStages)
	require.NotNil(t, plan.LastCompletedAt)
}

func TestAdvanceComputesNextDueFromCompletion(t *testing.T) {
	plan := *NewPlan(1, 4, start)

	completed := start.Add(3 * time.Hour) // reviewed late
	plan = Advance(plan, completed)

	assert.Equal(t, 2, plan.Stage)
	assert.Equal(t, completed.Add(24*time.Hour), plan.NextReviewAt)
	assert.Equal(t, []int{1}, plan.CompletedStages)
}

func TestAdvanceIdempotentOnCompletedPlan(t *testing.T) {
	plan := *NewPlan(3, 2, start)
	for i := 0; i < 8; i++ {
		plan = Advance(plan, plan.NextReviewAt)
	}
	require.True(t, plan.IsCompleted)

	again := Advance(plan, plan.NextReviewAt.Add(time.Hour))
	assert.Equal(t, 8, again.Stage)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, again.CompletedStages)
	assert.Equal(t, plan.LastCompletedAt, again.LastCompletedAt)
}

func TestIsDueMonotonic(t *testing.T) {
	plan := NewPlan(2, 5, start)

	assert.False(t, IsDue(plan, start))
	assert.False(t, IsDue(plan, start.Add(59*time.Minute)))

	due := plan.NextReviewAt
	assert.True(t, IsDue(plan, due))
	// Once due, it stays due at every later instant.
	for _, later := range []time.Duration{time.Minute, time.Hour, 24 * time.Hour, 365 * 24 * time.Hour} {
		assert.True(t, IsDue(plan, due.Add(later)))
	}
}

func TestUrgencyBoundedAndNonDecreasing(t *testing.T) {
	plan := NewPlan(4, 6, start)
	due := plan.NextReviewAt

	assert.Zero(t, Urgency(plan, start))

	prev := -1.0
	for days := 0; days <= 60; days++ {
		u := Urgency(plan, due.AddDate(0, 0, days))
		assert.GreaterOrEqual(t, u, prev, "day %d", days)
		assert.GreaterOrEqual(t, u, 0.0)
		assert.LessOrEqual(t, u, 1.0)
		prev = u
	}

	// 30+ days overdue is maximally urgent.
	assert.Equal(t, 1.0, Urgency(plan, due.AddDate(0, 0, 31)))
}

func TestUrgencyZeroForCompletedPlan(t *testing.T) {
	plan := *NewPlan(9, 3, start)
	for i := 0; i < 8; i++ {
		plan = Advance(plan, plan.NextReviewAt)
	}
	assert.Zero(t, Urgency(&plan, plan.NextReviewAt.AddDate(0, 0, 90)))
}
