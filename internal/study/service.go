// Package study is the facade the application talks to: it wires the
// schedulers, the progress updater, the review curve and the review lock
// into the operations a study flow needs.
package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/lexibot/internal/database"
	"github.com/example/lexibot/internal/progress"
	"github.com/example/lexibot/internal/reviewcurve"
	"github.com/example/lexibot/internal/reviewlock"
	"github.com/example/lexibot/internal/scheduler"
	"github.com/example/lexibot/internal/session"
	"github.com/example/lexibot/pkg/models"
)

// ErrPlanNotFound is returned when a review operation names a plan that
// does not exist.
var ErrPlanNotFound = errors.New("study: review plan not found")

// ErrReviewLocked is returned when another collection's review holds the
// lock. The competing lock travels alongside where callers need it.
var ErrReviewLocked = errors.New("study: review locked by another collection")

// WordStore is the word storage slice the service reads from.
type WordStore interface {
	GetAll(ctx context.Context) ([]models.Word, error)
	GetByID(ctx context.Context, id int64) (*models.Word, error)
	GetByCollection(ctx context.Context, collectionID int64) ([]models.Word, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Word, error)
}

// MasteryStore is the mastery storage slice the service reads and writes.
type MasteryStore interface {
	GetByWord(ctx context.Context, wordID int64) (*models.MasteryRecord, error)
	GetByWords(ctx context.Context, wordIDs []int64) (map[int64]*models.MasteryRecord, error)
	Upsert(ctx context.Context, rec *models.MasteryRecord) error
}

// PlanStore persists review plans.
type PlanStore interface {
	GetByID(ctx context.Context, id int64) (*models.ReviewPlan, error)
	GetByCollection(ctx context.Context, collectionID int64) ([]*models.ReviewPlan, error)
	GetIncomplete(ctx context.Context) ([]*models.ReviewPlan, error)
	Create(ctx context.Context, plan *models.ReviewPlan) error
	Update(ctx context.Context, plan *models.ReviewPlan) error
}

// Service exposes the study operations.
type Service struct {
	words    WordStore
	plans    PlanStore
	locks    *reviewlock.Manager
	updater  *progress.Updater
	sessions *session.Manager

	flashcard *scheduler.FlashcardScheduler
	test      *scheduler.TestScheduler
	review    *scheduler.ReviewScheduler

	now func() time.Time
}

// SnapshotStore persists per-mode session snapshots.
type SnapshotStore = session.SnapshotStore

// NewService wires a study service over the given stores.
func NewService(words WordStore, mastery MasteryStore, plans PlanStore, locks *reviewlock.Manager, snapshots SnapshotStore) *Service {
	return &Service{
		words:     words,
		plans:     plans,
		locks:     locks,
		updater:   progress.NewUpdater(words, mastery),
		sessions:  session.NewManager(snapshots, words),
		flashcard: scheduler.NewFlashcardScheduler(words, mastery),
		test:      scheduler.NewTestScheduler(words, mastery),
		review:    scheduler.NewReviewScheduler(words, mastery),
		now:       time.Now,
	}
}

// ScheduleFlashcardWords returns the ordered word IDs for a flashcard
// session. An empty list means nothing to study.
func (s *Service) ScheduleFlashcardWords(ctx context.Context, opts scheduler.Options) ([]int64, error) {
	return s.flashcard.Schedule(ctx, opts)
}

// ScheduleTestWords returns the multiple-choice questions for a test session.
func (s *Service) ScheduleTestWords(ctx context.Context, opts scheduler.TestOptions) ([]scheduler.Question, error) {
	return s.test.Schedule(ctx, opts)
}

// ReviewOptions selects the words for a review session.
type ReviewOptions struct {
	CollectionID int64
	Limit        int
	// OnlyDue restricts the session to words whose next-due time arrived.
	OnlyDue bool
	// PlanID ties the session to a specific plan's cohort; 0 uses the
	// collection's newest incomplete plan when one exists.
	PlanID int64
}

// ScheduleReviewWords returns the review list for a collection. When a plan
// with a word cohort governs the collection, the list is that cohort's
// unmastered members; otherwise due words, least recently reviewed first.
// DueCount reports the full count even when the list itself is capped.
func (s *Service) ScheduleReviewWords(ctx context.Context, opts ReviewOptions) (scheduler.ReviewResult, error) {
	plan, err := s.resolvePlan(ctx, opts.PlanID, opts.CollectionID)
	if err != nil {
		// A collection with no plan yet still reviews by due time; only an
		// explicitly named plan has to exist.
		if opts.PlanID != 0 || !errors.Is(err, ErrPlanNotFound) {
			return scheduler.ReviewResult{}, err
		}
	}

	return s.review.Schedule(ctx, scheduler.ReviewOptions{
		Options: scheduler.Options{CollectionID: opts.CollectionID, Limit: opts.Limit},
		OnlyDue: opts.OnlyDue,
		Plan:    plan,
		Now:     s.now(),
	})
}

// UpdateWordProgress records one answer against a word's mastery record and
// returns the updated record.
func (s *Service) UpdateWordProgress(ctx context.Context, upd progress.Update) (*models.MasteryRecord, error) {
	return s.updater.Apply(ctx, upd)
}

// UpdateWordProgressBatch records answers in order, stopping at the first
// failure.
func (s *Service) UpdateWordProgressBatch(ctx context.Context, updates []progress.Update) ([]*models.MasteryRecord, error) {
	return s.updater.ApplyBatch(ctx, updates)
}

// GetOrCreateReviewPlan returns the collection's newest incomplete plan,
// creating a stage-1 plan over the given cohort when none exists. An empty
// cohort makes a whole-collection plan.
func (s *Service) GetOrCreateReviewPlan(ctx context.Context, collectionID int64, wordIDs []int64) (*models.ReviewPlan, error) {
	plan, err := s.newestIncompletePlan(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		return plan, nil
	}

	total := len(wordIDs)
	if total == 0 {
		words, err := s.words.GetByCollection(ctx, collectionID)
		if err != nil {
			return nil, fmt.Errorf("study: count collection words: %w", err)
		}
		total = len(words)
	}

	plan = reviewcurve.NewPlan(collectionID, total, s.now())
	plan.WordIDs = append([]int64(nil), wordIDs...)
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("study: create review plan: %w", err)
	}
	return plan, nil
}

// CompleteReviewStage records the current stage of a plan as done, moves the
// plan along the curve and releases the review lock. PlanID 0 targets the
// collection's newest incomplete plan.
func (s *Service) CompleteReviewStage(ctx context.Context, planID, collectionID int64) (*models.ReviewPlan, error) {
	plan, err := s.resolvePlan(ctx, planID, collectionID)
	if err != nil {
		return nil, err
	}

	advanced := reviewcurve.Advance(*plan, s.now())
	if err := s.plans.Update(ctx, &advanced); err != nil {
		return nil, fmt.Errorf("study: advance review plan %d: %w", plan.ID, err)
	}
	if err := s.locks.Release(ctx); err != nil {
		return nil, err
	}
	return &advanced, nil
}

// IsReviewDue reports whether the collection's newest incomplete plan has a
// review due. No plan means nothing is due.
func (s *Service) IsReviewDue(ctx context.Context, collectionID int64) (bool, error) {
	plan, err := s.newestIncompletePlan(ctx, collectionID)
	if err != nil {
		return false, err
	}
	if plan == nil {
		return false, nil
	}
	return reviewcurve.IsDue(plan, s.now()), nil
}

// GetReviewUrgency returns how overdue the collection's review is, in [0, 1].
func (s *Service) GetReviewUrgency(ctx context.Context, collectionID int64) (float64, error) {
	plan, err := s.newestIncompletePlan(ctx, collectionID)
	if err != nil {
		return 0, err
	}
	if plan == nil {
		return 0, nil
	}
	return reviewcurve.Urgency(plan, s.now()), nil
}

// CanStartReview reports whether a review for the collection may start. On
// refusal the competing lock is returned.
func (s *Service) CanStartReview(ctx context.Context, collectionID int64) (bool, *models.ReviewLock, error) {
	return s.locks.CanStart(ctx, collectionID)
}

// SetReviewLock takes the review lock for a collection and stage. A lock
// held by another collection yields ErrReviewLocked plus the competing lock.
func (s *Service) SetReviewLock(ctx context.Context, collectionID int64, stage int) (*models.ReviewLock, error) {
	result, lock, err := s.locks.TryAcquire(ctx, collectionID, stage)
	if err != nil {
		return nil, err
	}
	switch result {
	case reviewlock.Acquired, reviewlock.HeldBySelf:
		return lock, nil
	default:
		return lock, ErrReviewLocked
	}
}

// ClearReviewLock releases the review lock. Clearing an absent lock is a
// no-op.
func (s *Service) ClearReviewLock(ctx context.Context) error {
	return s.locks.Release(ctx)
}

// BeginSession creates a fresh snapshot for a session over the given words.
// The caller saves it after each state transition.
func (s *Service) BeginSession(mode models.StudyMode, collectionID int64, stage int, wordIDs []int64) *models.SessionSnapshot {
	return s.sessions.Begin(mode, collectionID, stage, wordIDs)
}

// SaveSession persists the snapshot, replacing any previous one for its mode.
func (s *Service) SaveSession(ctx context.Context, snap *models.SessionSnapshot) error {
	return s.sessions.Save(ctx, snap)
}

// ResumeSession restores the snapshot matching the session key, or nil when
// no usable snapshot exists.
func (s *Service) ResumeSession(ctx context.Context, mode models.StudyMode, collectionID int64, stage int) (*models.SessionSnapshot, error) {
	return s.sessions.Load(ctx, mode, collectionID, stage)
}

// ClearSession drops a mode's snapshot, typically on completion or restart.
func (s *Service) ClearSession(ctx context.Context, mode models.StudyMode) error {
	return s.sessions.Clear(ctx, mode)
}

// DueWordCount counts words whose next-due time has arrived, across all
// collections. The reminder poller uses it.
func (s *Service) DueWordCount(ctx context.Context) (int, error) {
	result, err := s.review.Schedule(ctx, scheduler.ReviewOptions{
		OnlyDue: true,
		Now:     s.now(),
	})
	if err != nil {
		return 0, err
	}
	return result.DueCount, nil
}

// DueReviewPlans returns the incomplete plans whose next review has arrived.
func (s *Service) DueReviewPlans(ctx context.Context) ([]*models.ReviewPlan, error) {
	plans, err := s.plans.GetIncomplete(ctx)
	if err != nil {
		return nil, fmt.Errorf("study: load incomplete review plans: %w", err)
	}
	now := s.now()
	due := plans[:0:0]
	for _, p := range plans {
		if reviewcurve.IsDue(p, now) {
			due = append(due, p)
		}
	}
	return due, nil
}

// resolvePlan loads a plan by ID, or the collection's newest incomplete
// plan when id is 0.
func (s *Service) resolvePlan(ctx context.Context, id, collectionID int64) (*models.ReviewPlan, error) {
	if id != 0 {
		plan, err := s.plans.GetByID(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("study: load review plan %d: %w", id, err)
		}
		return plan, nil
	}

	plan, err := s.newestIncompletePlan(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// newestIncompletePlan returns nil without error when the collection has no
// plan still in progress.
func (s *Service) newestIncompletePlan(ctx context.Context, collectionID int64) (*models.ReviewPlan, error) {
	plans, err := s.plans.GetByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("study: load review plans for collection %d: %w", collectionID, err)
	}
	for _, p := range plans {
		if !p.IsCompleted {
			return p, nil
		}
	}
	return nil, nil
}
