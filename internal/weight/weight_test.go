package weight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/lexibot/pkg/models"
)

func record(reps, correctStreak, wrongStreak, seen int) *models.MasteryRecord {
	return &models.MasteryRecord{
		Repetitions:   reps,
		CorrectStreak: correctStreak,
		WrongStreak:   wrongStreak,
		TimesSeen:     seen,
	}
}

func TestComputeMasteryScore(t *testing.T) {
	cases := []struct {
		name string
		rec  *models.MasteryRecord
		want float64
	}{
		{"nil record", nil, 0},
		{"never seen", record(0, 0, 0, 0), 0},
		{"well known", record(5, 8, 0, 20), 1},
		{"beyond thresholds stays capped", record(12, 20, 0, 40), 1},
		{"halfway", record(3, 2, 0, 6), 0.6*0.6 + 0.4*0.25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Compute(tc.rec).Mastery, 1e-9)
		})
	}
}

func TestComputeWrongStreakPullsScoreDown(t *testing.T) {
	clean := Compute(record(4, 3, 0, 10))
	struggling := Compute(record(4, 3, 2, 10))
	assert.Less(t, struggling.Mastery, clean.Mastery)
}

func TestSelectionWeightFavorsMiddleBand(t *testing.T) {
	low := Compute(record(0, 0, 0, 1))     // barely seen
	mid := Compute(record(2, 2, 0, 5))     // middle band
	high := Compute(record(10, 10, 0, 30)) // overlearned

	assert.Greater(t, mid.Selection, low.Selection)
	assert.Greater(t, mid.Selection, high.Selection)
	assert.GreaterOrEqual(t, low.Selection, 0.0)
	assert.LessOrEqual(t, mid.Selection, 1.0)
}

func TestComputeIsDeterministic(t *testing.T) {
	rec := record(3, 2, 1, 9)
	first := Compute(rec)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Compute(rec))
	}
}

func TestLessTieBreaksByLeastRecentlySeen(t *testing.T) {
	now := time.Now()
	older := Scored{WordID: 1, Record: &models.MasteryRecord{
		Repetitions: 2, CorrectStreak: 2, TimesSeen: 4, LastReviewedAt: now.Add(-48 * time.Hour),
	}}
	newer := Scored{WordID: 2, Record: &models.MasteryRecord{
		Repetitions: 2, CorrectStreak: 2, TimesSeen: 4, LastReviewedAt: now,
	}}

	assert.True(t, Less(older, newer))
	assert.False(t, Less(newer, older))
}

func TestSortByWeightIsStableAcrossRuns(t *testing.T) {
	mk := func() []Scored {
		items := []Scored{
			{WordID: 3, Record: record(5, 8, 0, 20)},
			{WordID: 1, Record: record(2, 2, 0, 5)},
			{WordID: 2, Record: nil},
			{WordID: 4, Record: record(3, 1, 1, 7)},
		}
		for i := range items {
			items[i].Score = Compute(items[i].Record)
		}
		return items
	}

	a, b := mk(), mk()
	SortByWeight(a)
	SortByWeight(b)
	assert.Equal(t, a, b)

	// Mid-band words must come before the extremes.
	assert.Equal(t, int64(1), a[0].WordID)
}

func TestSortByMasteryPutsUnseenFirst(t *testing.T) {
	items := []Scored{
		{WordID: 10, Record: record(5, 8, 0, 20)},
		{WordID: 11, Record: nil},
		{WordID: 12, Record: record(1, 1, 0, 2)},
	}
	for i := range items {
		items[i].Score = Compute(items[i].Record)
	}
	SortByMastery(items)

	assert.Equal(t, int64(11), items[0].WordID)
	assert.Equal(t, int64(12), items[1].WordID)
	assert.Equal(t, int64(10), items[2].WordID)
}
