package remind

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lexibot/pkg/models"
)

type captureNotifier struct {
	dueCounts []int
	stages    [][2]int64
}

func (n *captureNotifier) RemindDueWords(count int) error {
	n.dueCounts = append(n.dueCounts, count)
	return nil
}

func (n *captureNotifier) RemindReviewStage(collectionID int64, stage int) error {
	n.stages = append(n.stages, [2]int64{collectionID, int64(stage)})
	return nil
}

type fixedSettings struct{ s models.UserSettings }

func (f fixedSettings) Get(ctx context.Context) (*models.UserSettings, error) {
	cp := f.s
	return &cp, nil
}

type fixedState struct {
	due   int
	plans []*models.ReviewPlan
}

func (f fixedState) DueWordCount(ctx context.Context) (int, error) { return f.due, nil }

func (f fixedState) DueReviewPlans(ctx context.Context) ([]*models.ReviewPlan, error) {
	return f.plans, nil
}

func openWindow(t *testing.T) {
	t.Helper()
	t.Setenv("NOTIFICATION_START_HOUR", "0")
	t.Setenv("NOTIFICATION_END_HOUR", "23")
}

func TestCheckAndRemindFiresAtNotificationHour(t *testing.T) {
	openWindow(t)
	notifier := &captureNotifier{}
	s := New(notifier,
		fixedSettings{models.UserSettings{NotificationEnabled: true, NotificationHour: time.Now().Hour()}},
		fixedState{due: 4, plans: []*models.ReviewPlan{{CollectionID: 2, Stage: 3}}},
	)

	s.checkAndRemind()

	require.Len(t, notifier.dueCounts, 1)
	assert.Equal(t, 4, notifier.dueCounts[0])
	require.Len(t, notifier.stages, 1)
	assert.Equal(t, [2]int64{2, 3}, notifier.stages[0])
}

func TestCheckAndRemindSkipsWhenDisabled(t *testing.T) {
	openWindow(t)
	notifier := &captureNotifier{}
	s := New(notifier,
		fixedSettings{models.UserSettings{NotificationEnabled: false, NotificationHour: time.Now().Hour()}},
		fixedState{due: 4},
	)

	s.checkAndRemind()
	assert.Empty(t, notifier.dueCounts)
}

func TestCheckAndRemindSkipsOtherHours(t *testing.T) {
	openWindow(t)
	notifier := &captureNotifier{}
	s := New(notifier,
		fixedSettings{models.UserSettings{NotificationEnabled: true, NotificationHour: (time.Now().Hour() + 1) % 24}},
		fixedState{due: 4},
	)

	s.checkAndRemind()
	assert.Empty(t, notifier.dueCounts)
}

func TestCheckAndRemindSkipsNothingDue(t *testing.T) {
	openWindow(t)
	notifier := &captureNotifier{}
	s := New(notifier,
		fixedSettings{models.UserSettings{NotificationEnabled: true, NotificationHour: time.Now().Hour()}},
		fixedState{due: 0},
	)

	s.checkAndRemind()
	assert.Empty(t, notifier.dueCounts)
	assert.Empty(t, notifier.stages)
}

func TestEnvHourFallsBackOnGarbage(t *testing.T) {
	t.Setenv("NOTIFICATION_START_HOUR", "not-a-number")
	assert.Equal(t, DefaultStartHour, envHour("NOTIFICATION_START_HOUR", DefaultStartHour))

	t.Setenv("NOTIFICATION_START_HOUR", "99")
	assert.Equal(t, DefaultStartHour, envHour("NOTIFICATION_START_HOUR", DefaultStartHour))
}
