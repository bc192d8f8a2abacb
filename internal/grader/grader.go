package grader

import (
	"time"

	"github.com/example/lexibot/pkg/models"
)

// Quality is the SM-2 style 0-5 signal a grading step runs on. Callers
// normally let the grader derive it from outcome and latency; an explicit
// value (e.g. from a self-graded flashcard) overrides the derivation.
type Quality int

const (
	// QualityUnset tells the grader to derive quality from outcome and latency.
	QualityUnset Quality = -1

	QualityBlackout         Quality = 0 // complete failure to recall
	QualityWrong            Quality = 1 // wrong, but the answer felt familiar
	QualityWrongFamiliar    Quality = 2 // wrong, recognized once shown
	QualityCorrectSlow      Quality = 3 // correct with significant effort
	QualityCorrectHesitated Quality = 4 // correct after some hesitation
	QualityPerfect          Quality = 5 // immediate correct recall
)

// Answer carries everything known about a single response.
type Answer struct {
	Outcome models.Outcome
	Latency time.Duration // 0 when not measured
	Quality Quality       // QualityUnset unless the caller grades explicitly
	At      time.Time     // zero means time.Now()
}

// Grader converts answers into updated mastery records using the SM-2
// easiness-factor model with a fixed ladder for the first repetitions.
type Grader struct {
	// MaxIntervalDays caps interval growth.
	MaxIntervalDays int
	// InitialIntervals are the intervals (days) for the first repetitions,
	// indexed by repetition count before the formula takes over.
	InitialIntervals []int
	// FastLatency and below counts as a fast response.
	FastLatency time.Duration
	// SlowLatency and above counts as a slow response.
	SlowLatency time.Duration
}

// New returns a grader with the default tuning.
func New() *Grader {
	return &Grader{
		MaxIntervalDays:  365,
		InitialIntervals: []int{1, 2, 3, 7, 10, 15, 20, 30},
		FastLatency:      4 * time.Second,
		SlowLatency:      15 * time.Second,
	}
}

// Grade applies one answer to a mastery record and returns the updated copy.
// It never persists anything; that is the progress updater's job. An invalid
// outcome is a programming error and panics.
func (g *Grader) Grade(rec models.MasteryRecord, ans Answer) models.MasteryRecord {
	ans.Outcome.MustValidate()

	now := ans.At
	if now.IsZero() {
		now = time.Now()
	}

	rec.TimesSeen++
	rec.LastOutcome = ans.Outcome
	rec.UpdatedAt = now

	if ans.Latency > 0 {
		if ans.Latency <= g.FastLatency {
			rec.FastResponses++
		} else if ans.Latency >= g.SlowLatency {
			rec.SlowResponses++
		}
	}

	// A skip counts as seen but moves nothing else.
	if ans.Outcome == models.OutcomeSkip {
		return rec
	}

	quality := ans.Quality
	if quality == QualityUnset {
		quality = g.deriveQuality(ans)
	}

	rec.EaseFactor = adjustEase(rec.EaseFactor, quality)

	if ans.Outcome == models.OutcomeCorrect {
		rec.TimesCorrect++
		rec.CorrectStreak++
		rec.WrongStreak = 0

		rec.IntervalDays = g.nextInterval(rec)
		rec.Repetitions++
	} else {
		rec.Repetitions = 0
		rec.WrongStreak++
		rec.CorrectStreak = 0
		rec.IntervalDays = 1
	}

	rec.NextDueAt = now.AddDate(0, 0, rec.IntervalDays)
	return rec
}

// deriveQuality maps outcome plus latency to the 0-5 signal. A fast correct
// answer is worth more than a slow one.
func (g *Grader) deriveQuality(ans Answer) Quality {
	if ans.Outcome == models.OutcomeWrong {
		return QualityWrong
	}
	switch {
	case ans.Latency > 0 && ans.Latency <= g.FastLatency:
		return QualityPerfect
	case ans.Latency >= g.SlowLatency:
		return QualityCorrectSlow
	default:
		return QualityCorrectHesitated
	}
}

// nextInterval picks the interval for a correct answer: the fixed ladder for
// early repetitions, interval * EF afterwards, capped at MaxIntervalDays.
func (g *Grader) nextInterval(rec models.MasteryRecord) int {
	var next int
	if rec.Repetitions < len(g.InitialIntervals) {
		next = g.InitialIntervals[rec.Repetitions]
	} else {
		next = int(float64(rec.IntervalDays) * rec.EaseFactor)
	}
	if next < 1 {
		next = 1
	}
	if next > g.MaxIntervalDays {
		next = g.MaxIntervalDays
	}
	return next
}

// adjustEase applies the SM-2 easiness update, bounded below so the curve
// never degenerates.
func adjustEase(ef float64, quality Quality) float64 {
	q := float64(quality)
	ef += 0.1 - (5.0-q)*(0.08+(5.0-q)*0.02)
	if ef < models.MinEaseFactor {
		ef = models.MinEaseFactor
	}
	return ef
}
