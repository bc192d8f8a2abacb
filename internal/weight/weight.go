// Package weight derives selection weights and mastery scores from mastery
// records. Both are pure functions of the record, so identical records always
// sort identically.
package weight

import (
	"sort"
	"time"

	"github.com/example/lexibot/pkg/models"
)

const (
	// WellKnownRepetitions is the repetition count at which a word is
	// considered fully known.
	WellKnownRepetitions = 5
	// StreakCap is the correct-streak value at which the streak component
	// saturates.
	StreakCap = 8
	// wrongStreakPenalty is subtracted per consecutive wrong answer.
	wrongStreakPenalty = 0.15
)

// Score holds the two derived values for one word.
type Score struct {
	// Mastery is 0 for a never-seen word and approaches 1 for a word with
	// several consecutive correct answers.
	Mastery float64
	// Selection biases scheduling toward the middle mastery band: words that
	// are neither untouched nor overlearned.
	Selection float64
}

// Compute derives the scores for a record. A nil record means never seen.
func Compute(rec *models.MasteryRecord) Score {
	m := masteryScore(rec)
	return Score{Mastery: m, Selection: selectionWeight(m)}
}

func masteryScore(rec *models.MasteryRecord) float64 {
	if rec == nil || !rec.Seen() {
		return 0
	}

	reps := clamp(float64(rec.Repetitions)/WellKnownRepetitions, 0, 1)
	streak := clamp(float64(rec.CorrectStreak)/StreakCap, 0, 1)

	score := 0.6*reps + 0.4*streak
	score -= wrongStreakPenalty * float64(rec.WrongStreak)
	return clamp(score, 0, 1)
}

// selectionWeight peaks at mastery 0.5 and falls off toward both extremes:
// untouched words and overlearned words are less interesting to test.
func selectionWeight(mastery float64) float64 {
	return clamp(4*mastery*(1-mastery), 0, 1)
}

// Scored pairs a word with its mastery record and computed score.
type Scored struct {
	WordID int64
	Record *models.MasteryRecord
	Score  Score
}

// Less orders two scored words for scheduling: selection weight descending,
// ties broken by least-recently-seen (a zero LastReviewedAt sorts first).
func Less(a, b Scored) bool {
	if a.Score.Selection != b.Score.Selection {
		return a.Score.Selection > b.Score.Selection
	}
	at, bt := lastSeen(a.Record), lastSeen(b.Record)
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	// Final tie-break keeps the ordering total and deterministic.
	return a.WordID < b.WordID
}

// SortByWeight sorts in place using Less. The sort is deterministic for
// identical inputs.
func SortByWeight(items []Scored) {
	sort.SliceStable(items, func(i, j int) bool { return Less(items[i], items[j]) })
}

// SortByMastery sorts in place by mastery ascending, weakest words first,
// with the same least-recently-seen and ID tie-breaks as Less.
func SortByMastery(items []Scored) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score.Mastery != b.Score.Mastery {
			return a.Score.Mastery < b.Score.Mastery
		}
		at, bt := lastSeen(a.Record), lastSeen(b.Record)
		if !at.Equal(bt) {
			return at.Before(bt)
		}
		return a.WordID < b.WordID
	})
}

func lastSeen(rec *models.MasteryRecord) time.Time {
	if rec == nil {
		return time.Time{}
	}
	return rec.LastReviewedAt
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
