package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lexibot/pkg/models"
)

type memSnapshots struct {
	byMode map[models.StudyMode]*models.SessionSnapshot
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{byMode: map[models.StudyMode]*models.SessionSnapshot{}}
}

func (s *memSnapshots) GetByMode(ctx context.Context, mode models.StudyMode) (*models.SessionSnapshot, error) {
	snap, ok := s.byMode[mode]
	if !ok {
		return nil, nil
	}
	cp := *snap
	cp.WordIDs = append([]int64(nil), snap.WordIDs...)
	return &cp, nil
}

func (s *memSnapshots) Upsert(ctx context.Context, snap *models.SessionSnapshot) error {
	cp := *snap
	s.byMode[snap.Mode] = &cp
	return nil
}

func (s *memSnapshots) DeleteByMode(ctx context.Context, mode models.StudyMode) error {
	delete(s.byMode, mode)
	return nil
}

type memWords struct {
	alive map[int64]bool
}

func (s *memWords) GetByIDs(ctx context.Context, ids []int64) ([]models.Word, error) {
	var out []models.Word
	for _, id := range ids {
		if s.alive[id] {
			out = append(out, models.Word{ID: id})
		}
	}
	return out, nil
}

func fixture(alive ...int64) (*Manager, *memSnapshots) {
	words := &memWords{alive: map[int64]bool{}}
	for _, id := range alive {
		words.alive[id] = true
	}
	store := newMemSnapshots()
	return NewManager(store, words), store
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	m, _ := fixture(1, 2, 3)
	snap := m.Begin(models.ModeFlashcard, 4, 0, []int64{1, 2, 3})
	snap.Cursor = 1
	snap.Studied = 1
	snap.Correct = 1
	require.NoError(t, m.Save(context.Background(), snap))

	got, err := m.Load(context.Background(), models.ModeFlashcard, 4, 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []int64{1, 2, 3}, got.WordIDs)
	assert.Equal(t, 1, got.Cursor)
	assert.Equal(t, 1, got.Correct)
	assert.Equal(t, snap.ID, got.ID)
}

func TestLoadRejectsMismatchedKey(t *testing.T) {
	m, _ := fixture(1, 2)
	snap := m.Begin(models.ModeFlashcard, 4, 0, []int64{1, 2})
	require.NoError(t, m.Save(context.Background(), snap))

	got, err := m.Load(context.Background(), models.ModeFlashcard, 9, 0)
	require.NoError(t, err)
	assert.Nil(t, got, "different collection must not resume the snapshot")

	got, err = m.Load(context.Background(), models.ModeTest, 4, 0)
	require.NoError(t, err)
	assert.Nil(t, got, "different mode must not resume the snapshot")
}

func TestLoadFiltersDeletedWords(t *testing.T) {
	// Word 2 has been deleted since the snapshot was taken. The cursor sat
	// past words 1 and 2, so it resumes past the one survivor it had seen.
	m, _ := fixture(1, 3)
	snap := m.Begin(models.ModeReview, 4, 2, []int64{1, 2, 3})
	snap.Cursor = 2
	snap.Outcomes[1] = models.OutcomeCorrect
	snap.Outcomes[2] = models.OutcomeWrong
	require.NoError(t, m.Save(context.Background(), snap))

	got, err := m.Load(context.Background(), models.ModeReview, 4, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []int64{1, 3}, got.WordIDs)
	assert.Equal(t, 1, got.Cursor)
	assert.NotContains(t, got.Outcomes, int64(2))
	assert.Contains(t, got.Outcomes, int64(1))
}

func TestLoadDropsSnapshotWhenAllWordsGone(t *testing.T) {
	m, store := fixture() // nothing alive
	snap := m.Begin(models.ModeFlashcard, 4, 0, []int64{1, 2})
	require.NoError(t, m.Save(context.Background(), snap))

	got, err := m.Load(context.Background(), models.ModeFlashcard, 4, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, store.byMode, "useless snapshot is removed")
}

func TestClearRemovesSnapshot(t *testing.T) {
	m, store := fixture(1)
	snap := m.Begin(models.ModeTest, 4, 0, []int64{1})
	require.NoError(t, m.Save(context.Background(), snap))
	require.NoError(t, m.Clear(context.Background(), models.ModeTest))
	assert.Empty(t, store.byMode)
}

func TestSaveRejectsInvalidMode(t *testing.T) {
	m, _ := fixture(1)
	err := m.Save(context.Background(), &models.SessionSnapshot{Mode: "cram"})
	assert.Error(t, err)
}

func TestFinished(t *testing.T) {
	snap := &models.SessionSnapshot{WordIDs: []int64{1, 2}, Cursor: 1}
	assert.False(t, snap.Finished())
	snap.Cursor = 2
	assert.True(t, snap.Finished())
}
