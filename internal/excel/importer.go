// Package excel imports word lists from Excel and CSV files into
// collections. Imported words get a fresh mastery record so they enter the
// schedulers immediately.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/lexibot/pkg/models"
)

// CollectionStore is the collection storage slice the importer needs.
type CollectionStore interface {
	GetAll(ctx context.Context) ([]models.Collection, error)
	Create(ctx context.Context, c *models.Collection) error
}

// WordStore is the word storage slice the importer needs.
type WordStore interface {
	GetByCollection(ctx context.Context, collectionID int64) ([]models.Word, error)
	Create(ctx context.Context, word *models.Word) error
}

// MasteryStore seeds mastery records for imported words.
type MasteryStore interface {
	Upsert(ctx context.Context, rec *models.MasteryRecord) error
}

// Config defines where the importer reads and which columns hold what.
type Config struct {
	FilePath            string
	WordColumn          string
	TranslationColumn   string
	ExampleColumn       string
	CollectionColumn    string
	DifficultyColumn    string
	PronunciationColumn string
	SheetName           string
	// StartRow is the first data row, 1-based. Row 1 is usually a header.
	StartRow int
	// DefaultCollection receives words whose collection cell is empty.
	DefaultCollection string
}

// DefaultConfig returns the column layout the import templates use.
func DefaultConfig() Config {
	return Config{
		WordColumn:          "A",
		TranslationColumn:   "B",
		ExampleColumn:       "C",
		CollectionColumn:    "D",
		DifficultyColumn:    "E",
		PronunciationColumn: "F",
		SheetName:           "Sheet1",
		StartRow:            2,
		DefaultCollection:   "Imported",
	}
}

// Result summarizes one import run.
type Result struct {
	TotalProcessed     int
	CollectionsCreated int
	Created            int
	Skipped            int
	Errors             []string
}

// Importer loads word files into the database.
type Importer struct {
	collections CollectionStore
	words       WordStore
	mastery     MasteryStore
}

// NewImporter creates an importer over the given stores.
func NewImporter(collections CollectionStore, words WordStore, mastery MasteryStore) *Importer {
	return &Importer{collections: collections, words: words, mastery: mastery}
}

// Import reads the configured file, dispatching on extension. CSV files
// follow the simple word,translation[,example] layout; everything else is
// read through excelize.
func (imp *Importer) Import(ctx context.Context, config Config) (*Result, error) {
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return imp.importCSV(ctx, config)
	}
	return imp.importExcel(ctx, config)
}

func (imp *Importer) importExcel(ctx context.Context, config Config) (*Result, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", config.SheetName, err)
	}

	state, err := imp.newImportState(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		entry := rowEntry{
			Word:          cell(row, config.WordColumn),
			Translation:   cell(row, config.TranslationColumn),
			Example:       cell(row, config.ExampleColumn),
			Collection:    cell(row, config.CollectionColumn),
			Difficulty:    cell(row, config.DifficultyColumn),
			Pronunciation: cell(row, config.PronunciationColumn),
		}
		if entry.Collection == "" {
			entry.Collection = config.DefaultCollection
		}
		if err := imp.importEntry(ctx, entry, state, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

func (imp *Importer) importCSV(ctx context.Context, config Config) (*Result, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	state, err := imp.newImportState(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Errors: make([]string, 0)}
	currentCollection := config.DefaultCollection
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rowNum++
		if rowNum < config.StartRow {
			continue
		}

		// A row with only the first cell filled names the collection for
		// the rows that follow.
		if len(row) >= 2 && strings.TrimSpace(row[0]) != "" && strings.TrimSpace(row[1]) == "" {
			currentCollection = strings.Trim(strings.TrimSpace(row[0]), "\"")
			continue
		}
		if len(row) < 2 {
			result.Skipped++
			continue
		}

		result.TotalProcessed++
		entry := rowEntry{
			Word:        row[0],
			Translation: row[1],
			Collection:  currentCollection,
		}
		if len(row) > 2 {
			entry.Example = row[2]
		}
		if err := imp.importEntry(ctx, entry, state, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

type rowEntry struct {
	Word          string
	Translation   string
	Example       string
	Collection    string
	Difficulty    string
	Pronunciation string
}

// importState caches collection IDs and per-collection word sets so an
// import run does not re-query for every row.
type importState struct {
	collectionIDs map[string]int64
	knownWords    map[int64]map[string]bool
}

func (imp *Importer) newImportState(ctx context.Context) (*importState, error) {
	existing, err := imp.collections.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load collections: %w", err)
	}
	state := &importState{
		collectionIDs: make(map[string]int64, len(existing)),
		knownWords:    make(map[int64]map[string]bool),
	}
	for _, c := range existing {
		state.collectionIDs[strings.ToLower(c.Name)] = c.ID
	}
	return state, nil
}

func (imp *Importer) importEntry(ctx context.Context, entry rowEntry, state *importState, result *Result) error {
	word := cleanWord(entry.Word)
	translation := strings.TrimSpace(entry.Translation)
	if word == "" {
		return fmt.Errorf("word cannot be empty")
	}
	if translation == "" {
		return fmt.Errorf("translation cannot be empty")
	}

	collectionID, err := imp.getOrCreateCollection(ctx, entry.Collection, state, result)
	if err != nil {
		return err
	}

	known, err := imp.knownWords(ctx, collectionID, state)
	if err != nil {
		return err
	}
	if known[strings.ToLower(word)] {
		result.Skipped++
		return nil
	}

	w := &models.Word{
		Word:          word,
		Translation:   translation,
		Example:       strings.TrimSpace(entry.Example),
		CollectionID:  collectionID,
		Difficulty:    parseIntOrDefault(entry.Difficulty, 1, 5, 3),
		Pronunciation: strings.TrimSpace(entry.Pronunciation),
	}
	if err := imp.words.Create(ctx, w); err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	known[strings.ToLower(word)] = true

	if err := imp.mastery.Upsert(ctx, models.NewMasteryRecord(collectionID, w.ID)); err != nil {
		return fmt.Errorf("failed to seed mastery record: %w", err)
	}
	result.Created++
	return nil
}

func (imp *Importer) getOrCreateCollection(ctx context.Context, name string, state *importState, result *Result) (int64, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := state.collectionIDs[key]; ok {
		return id, nil
	}
	c := &models.Collection{Name: strings.TrimSpace(name)}
	if err := imp.collections.Create(ctx, c); err != nil {
		return 0, fmt.Errorf("failed to create collection %q: %w", name, err)
	}
	state.collectionIDs[key] = c.ID
	result.CollectionsCreated++
	return c.ID, nil
}

func (imp *Importer) knownWords(ctx context.Context, collectionID int64, state *importState) (map[string]bool, error) {
	if known, ok := state.knownWords[collectionID]; ok {
		return known, nil
	}
	words, err := imp.words.GetByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection words: %w", err)
	}
	known := make(map[string]bool, len(words))
	for _, w := range words {
		known[strings.ToLower(w.Word)] = true
	}
	state.knownWords[collectionID] = known
	return known, nil
}

// cleanWord strips trailing notes in parentheses, e.g. "go (went, gone)".
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

// cell reads a row cell by Excel column letter, tolerating short rows.
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

func parseIntOrDefault(s string, min, max, fallback int) int {
	var val int
	if _, err := fmt.Sscanf(s, "%d", &val); err != nil {
		return fallback
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
