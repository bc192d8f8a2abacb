package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/example/lexibot/internal/weight"
	"github.com/example/lexibot/pkg/models"
)

// Batch size bounds when no explicit limit is given: the mid-band count
// drives the size, clamped to this range.
const (
	minTestBatch = 10
	maxTestBatch = 50
)

// Mid-band mastery boundaries. Words in this band need reinforcement the
// most and drive the derived batch size.
const (
	midBandLow  = 0.25
	midBandHigh = 0.75
)

// DistractorCount is the number of wrong options per multiple-choice question.
const DistractorCount = 3

// TestOptions extends the shared options with test-specific cutoffs.
type TestOptions struct {
	Options
	// EasyCutoff excludes words at or above this mastery; <= 0 uses the default.
	EasyCutoff float64
	// ExcludeHard additionally drops seen words stuck below the hard cutoff.
	ExcludeHard bool
}

// defaultEasyCutoff drops overlearned words from tests.
const defaultEasyCutoff = 0.9

// hardCutoff marks words failing so consistently that testing them again
// is pointless until flashcards bring them back.
const hardCutoff = 0.1

// Question is one multiple-choice entry: the tested word plus the words
// whose translations serve as wrong options.
type Question struct {
	WordID        int64
	DistractorIDs []int64
}

// TestScheduler builds multiple-choice test batches.
type TestScheduler struct {
	words   WordStore
	mastery MasteryStore
	rnd     *rand.Rand
}

// NewTestScheduler creates a test scheduler over the given stores.
func NewTestScheduler(words WordStore, mastery MasteryStore) *TestScheduler {
	return &TestScheduler{
		words:   words,
		mastery: mastery,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewTestSchedulerWithRand creates a test scheduler with a caller-supplied
// random source, which tests use for reproducibility.
func NewTestSchedulerWithRand(words WordStore, mastery MasteryStore, rnd *rand.Rand) *TestScheduler {
	return &TestScheduler{words: words, mastery: mastery, rnd: rnd}
}

// Schedule returns the ordered questions for a test session. The candidate
// pool excludes extreme-easy words; when no limit is given the batch size is
// derived from how many words sit in the middle mastery band.
func (s *TestScheduler) Schedule(ctx context.Context, opts TestOptions) ([]Question, error) {
	pool, _, err := candidates(ctx, s.words, s.mastery, opts.CollectionID)
	if err != nil {
		return nil, fmt.Errorf("test scheduler: %w", err)
	}
	if len(pool) == 0 {
		return nil, nil
	}

	easyCutoff := opts.EasyCutoff
	if easyCutoff <= 0 {
		easyCutoff = defaultEasyCutoff
	}

	var eligible []weight.Scored
	midBand := 0
	for _, c := range pool {
		m := c.Score.Mastery
		if m >= easyCutoff {
			continue
		}
		if opts.ExcludeHard && c.Record != nil && c.Record.Seen() && m <= hardCutoff {
			continue
		}
		if m >= midBandLow && m <= midBandHigh {
			midBand++
		}
		eligible = append(eligible, c)
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = midBand
		if limit < minTestBatch {
			limit = minTestBatch
		}
		if limit > maxTestBatch {
			limit = maxTestBatch
		}
	}

	weight.SortByWeight(eligible)
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}

	questions := make([]Question, 0, len(eligible))
	for _, c := range eligible {
		distractors, err := s.pickDistractors(ctx, c.WordID, opts.CollectionID)
		if err != nil {
			return nil, fmt.Errorf("test scheduler: %w", err)
		}
		questions = append(questions, Question{WordID: c.WordID, DistractorIDs: distractors})
	}
	return questions, nil
}

// pickDistractors draws up to DistractorCount wrong options, preferring the
// tested word's own collection and falling back to the whole pool. The
// correct word is never an option and no option repeats.
func (s *TestScheduler) pickDistractors(ctx context.Context, wordID, collectionID int64) ([]int64, error) {
	ownCollection, err := s.resolveCollection(ctx, wordID, collectionID)
	if err != nil {
		return nil, err
	}

	sameCollection, err := s.words.GetByCollection(ctx, ownCollection)
	if err != nil {
		return nil, err
	}

	picked := make([]int64, 0, DistractorCount)
	used := map[int64]bool{wordID: true}
	s.drawFrom(sameCollection, used, &picked)

	if len(picked) < DistractorCount {
		all, err := s.words.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		s.drawFrom(all, used, &picked)
	}
	return picked, nil
}

// resolveCollection finds which collection the tested word belongs to when
// the caller scheduled across all collections.
func (s *TestScheduler) resolveCollection(ctx context.Context, wordID, collectionID int64) (int64, error) {
	if collectionID != 0 {
		return collectionID, nil
	}
	words, err := s.words.GetByIDs(ctx, []int64{wordID})
	if err != nil {
		return 0, err
	}
	if len(words) == 0 {
		return 0, nil
	}
	return words[0].CollectionID, nil
}

func (s *TestScheduler) drawFrom(pool []models.Word, used map[int64]bool, picked *[]int64) {
	shuffled := make([]models.Word, len(pool))
	copy(shuffled, pool)
	s.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	for _, w := range shuffled {
		if len(*picked) >= DistractorCount {
			return
		}
		if used[w.ID] {
			continue
		}
		used[w.ID] = true
		*picked = append(*picked, w.ID)
	}
}
