package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lexibot/pkg/models"
)

type memDB struct {
	collections []models.Collection
	words       []models.Word
	records     []*models.MasteryRecord
	nextID      int64
}

func (db *memDB) GetAll(ctx context.Context) ([]models.Collection, error) {
	return db.collections, nil
}

func (db *memDB) Create(ctx context.Context, c *models.Collection) error {
	db.nextID++
	c.ID = db.nextID
	db.collections = append(db.collections, *c)
	return nil
}

func (db *memDB) GetByCollection(ctx context.Context, collectionID int64) ([]models.Word, error) {
	var out []models.Word
	for _, w := range db.words {
		if w.CollectionID == collectionID {
			out = append(out, w)
		}
	}
	return out, nil
}

type memWordStore struct{ db *memDB }

func (s memWordStore) GetByCollection(ctx context.Context, collectionID int64) ([]models.Word, error) {
	return s.db.GetByCollection(ctx, collectionID)
}

func (s memWordStore) Create(ctx context.Context, word *models.Word) error {
	s.db.nextID++
	word.ID = s.db.nextID
	s.db.words = append(s.db.words, *word)
	return nil
}

type memMasteryStore struct{ db *memDB }

func (s memMasteryStore) Upsert(ctx context.Context, rec *models.MasteryRecord) error {
	s.db.records = append(s.db.records, rec)
	return nil
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newImporter() (*Importer, *memDB) {
	db := &memDB{}
	return NewImporter(db, memWordStore{db}, memMasteryStore{db}), db
}

func TestImportCSVCreatesWordsAndCollections(t *testing.T) {
	imp, db := newImporter()
	path := writeTempCSV(t, "Animals,\ncat,die Katze,The cat sleeps\ndog,der Hund\nVerbs,\ngo (went gone),gehen\n")

	config := DefaultConfig()
	config.FilePath = path
	config.StartRow = 1

	result, err := imp.Import(context.Background(), config)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 2, result.CollectionsCreated)
	assert.Empty(t, result.Errors)

	require.Len(t, db.words, 3)
	assert.Equal(t, "cat", db.words[0].Word)
	assert.Equal(t, "The cat sleeps", db.words[0].Example)
	assert.Equal(t, "go", db.words[2].Word, "parenthetical forms are stripped")
	assert.Equal(t, "Verbs", db.collections[1].Name)

	// Every imported word starts with a mastery record.
	require.Len(t, db.records, 3)
	assert.Equal(t, db.words[0].ID, db.records[0].WordID)
	assert.Equal(t, models.DefaultEaseFactor, db.records[0].EaseFactor)
}

func TestImportCSVSkipsDuplicates(t *testing.T) {
	imp, db := newImporter()
	path := writeTempCSV(t, "cat,die Katze\nCat,die Katze\n")
	config := DefaultConfig()
	config.FilePath = path
	config.StartRow = 1

	result, err := imp.Import(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, db.words, 1)
}

func TestImportCSVReportsBadRows(t *testing.T) {
	imp, _ := newImporter()
	path := writeTempCSV(t, ",die Katze\nok,passt\n")

	config := DefaultConfig()
	config.FilePath = path
	config.StartRow = 1

	result, err := imp.Import(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Len(t, result.Errors, 1)
}

func TestImportMissingFile(t *testing.T) {
	imp, _ := newImporter()
	config := DefaultConfig()
	config.FilePath = "/does/not/exist.csv"
	_, err := imp.Import(context.Background(), config)
	assert.Error(t, err)
}
