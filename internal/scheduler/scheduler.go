// Package scheduler selects and orders words for the three study modes.
// Each scheduler pulls a candidate pool from the word store, attaches
// mastery records (treating absent records as never-seen) and orders the
// pool with the weight package. An empty pool is a valid "nothing to study"
// result, never an error.
package scheduler

import (
	"context"

	"github.com/example/lexibot/internal/weight"
	"github.com/example/lexibot/pkg/models"
)

// WordStore is the slice of the word storage the schedulers read from.
type WordStore interface {
	GetAll(ctx context.Context) ([]models.Word, error)
	GetByCollection(ctx context.Context, collectionID int64) ([]models.Word, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Word, error)
}

// MasteryStore is the slice of mastery storage the schedulers read from.
type MasteryStore interface {
	GetByWords(ctx context.Context, wordIDs []int64) (map[int64]*models.MasteryRecord, error)
}

// Options are shared by all three schedulers.
type Options struct {
	// CollectionID filters candidates to one collection; 0 means all words.
	CollectionID int64
	// Limit caps the returned list; 0 means the scheduler decides.
	Limit int
}

// candidates loads the candidate pool with scores attached. Records default
// to never-seen; the scored Record stays nil in that case so the weight
// package can tell the difference.
func candidates(ctx context.Context, words WordStore, mastery MasteryStore, collectionID int64) ([]weight.Scored, map[int64]models.Word, error) {
	var pool []models.Word
	var err error
	if collectionID != 0 {
		pool, err = words.GetByCollection(ctx, collectionID)
	} else {
		pool, err = words.GetAll(ctx)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(pool) == 0 {
		return nil, nil, nil
	}

	ids := make([]int64, len(pool))
	byID := make(map[int64]models.Word, len(pool))
	for i, w := range pool {
		ids[i] = w.ID
		byID[w.ID] = w
	}

	records, err := mastery.GetByWords(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	scored := make([]weight.Scored, len(pool))
	for i, w := range pool {
		rec := records[w.ID] // nil when never seen
		scored[i] = weight.Scored{
			WordID: w.ID,
			Record: rec,
			Score:  weight.Compute(rec),
		}
	}
	return scored, byID, nil
}

// masteredScore is the mastery level at which a word counts as mastered for
// review-cohort purposes.
const masteredScore = 0.75

func isMastered(s weight.Scored) bool {
	return s.Score.Mastery >= masteredScore
}

func capIDs(ids []int64, limit int) []int64 {
	if limit > 0 && len(ids) > limit {
		return ids[:limit]
	}
	return ids
}
