package scheduler

import (
	"context"
	"fmt"

	"github.com/example/lexibot/internal/weight"
)

// reinforcementEvery controls how often a well-known word is interleaved
// into a flashcard run: one after every four weak words.
const reinforcementEvery = 5

// strongMastery is the mastery level above which a word counts as strong
// enough to serve as reinforcement rather than study material.
const strongMastery = 0.75

// FlashcardScheduler builds ordered word lists for flashcard sessions.
// New and weak words surface first, with a minority of well-known words
// mixed in for reinforcement.
type FlashcardScheduler struct {
	words   WordStore
	mastery MasteryStore
}

// NewFlashcardScheduler creates a flashcard scheduler over the given stores.
func NewFlashcardScheduler(words WordStore, mastery MasteryStore) *FlashcardScheduler {
	return &FlashcardScheduler{words: words, mastery: mastery}
}

// Schedule returns the ordered word IDs for a flashcard session.
func (s *FlashcardScheduler) Schedule(ctx context.Context, opts Options) ([]int64, error) {
	pool, _, err := candidates(ctx, s.words, s.mastery, opts.CollectionID)
	if err != nil {
		return nil, fmt.Errorf("flashcard scheduler: %w", err)
	}
	if len(pool) == 0 {
		return nil, nil
	}

	weight.SortByMastery(pool)

	// Split the sorted pool: weak words stay in mastery order, strong words
	// feed the interleave.
	var weak, strong []weight.Scored
	for _, c := range pool {
		if c.Score.Mastery >= strongMastery {
			strong = append(strong, c)
		} else {
			weak = append(weak, c)
		}
	}

	ordered := interleave(weak, strong)
	ids := make([]int64, len(ordered))
	for i, c := range ordered {
		ids[i] = c.WordID
	}
	return capIDs(ids, opts.Limit), nil
}

// interleave emits weak words in order, slotting one strong word after every
// reinforcementEvery-1 weak ones. Leftover strong words go to the tail.
func interleave(weak, strong []weight.Scored) []weight.Scored {
	out := make([]weight.Scored, 0, len(weak)+len(strong))
	si := 0
	for i, w := range weak {
		out = append(out, w)
		if (i+1)%(reinforcementEvery-1) == 0 && si < len(strong) {
			out = append(out, strong[si])
			si++
		}
	}
	out = append(out, strong[si:]...)
	return out
}
