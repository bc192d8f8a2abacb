// Package remind runs the hourly reminder check: when the learner's
// notification hour arrives and words or a review stage are waiting, the
// configured notifier is told about it. Delivery itself (terminal bell,
// desktop notification, chat message) lives behind the Notifier interface.
package remind

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/lexibot/pkg/models"
)

// Default quiet-hours window. Reminders only fire between these hours.
const (
	DefaultStartHour = 8
	DefaultEndHour   = 22
)

// Notifier delivers a reminder to the learner.
type Notifier interface {
	RemindDueWords(count int) error
	RemindReviewStage(collectionID int64, stage int) error
}

// SettingsStore reads the learner's notification preferences.
type SettingsStore interface {
	Get(ctx context.Context) (*models.UserSettings, error)
}

// StudyState answers what is currently waiting for the learner.
type StudyState interface {
	DueWordCount(ctx context.Context) (int, error)
	DueReviewPlans(ctx context.Context) ([]*models.ReviewPlan, error)
}

// Scheduler polls hourly and fires reminders through the notifier.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	settings  SettingsStore
	state     StudyState
}

// New creates a reminder scheduler.
func New(notifier Notifier, settings SettingsStore, state StudyState) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		settings:  settings,
		state:     state,
	}
}

// Start begins the hourly check without blocking.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndRemind)
	s.scheduler.StartAsync()
}

// Stop terminates the scheduled checks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) checkAndRemind() {
	ctx := context.Background()
	currentHour := time.Now().Hour()

	startHour := envHour("NOTIFICATION_START_HOUR", DefaultStartHour)
	endHour := envHour("NOTIFICATION_END_HOUR", DefaultEndHour)
	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, startHour, endHour)
		return
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		log.Printf("Error loading settings for reminders: %v", err)
		return
	}
	if !settings.NotificationEnabled || currentHour != settings.NotificationHour {
		return
	}

	if count, err := s.state.DueWordCount(ctx); err != nil {
		log.Printf("Error counting due words: %v", err)
	} else if count > 0 {
		if err := s.notifier.RemindDueWords(count); err != nil {
			log.Printf("Error sending due-word reminder: %v", err)
		}
	}

	plans, err := s.state.DueReviewPlans(ctx)
	if err != nil {
		log.Printf("Error loading due review plans: %v", err)
		return
	}
	for _, plan := range plans {
		if err := s.notifier.RemindReviewStage(plan.CollectionID, plan.Stage); err != nil {
			log.Printf("Error sending review reminder for collection %d: %v", plan.CollectionID, err)
		}
	}
}

func envHour(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
		return h
	}
	return fallback
}

// LogNotifier writes reminders to the application log. It is the default
// notifier until a real delivery channel is wired in.
type LogNotifier struct{}

func (LogNotifier) RemindDueWords(count int) error {
	log.Printf("Reminder: %d word(s) due for study", count)
	return nil
}

func (LogNotifier) RemindReviewStage(collectionID int64, stage int) error {
	log.Printf("Reminder: collection %d has review stage %d due", collectionID, stage)
	return nil
}
