package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/lexibot/pkg/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("database: not found")

// WordRepository handles database operations for words
type WordRepository struct{}

// NewWordRepository creates a new repository instance
func NewWordRepository() *WordRepository {
	return &WordRepository{}
}

// GetAll returns all words
func (r *WordRepository) GetAll(ctx context.Context) ([]models.Word, error) {
	var words []models.Word
	err := DB.SelectContext(ctx, &words, "SELECT * FROM words ORDER BY word")
	if err != nil {
		return nil, fmt.Errorf("failed to get words: %w", err)
	}
	return words, nil
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	err := DB.GetContext(ctx, &word, DB.Rebind("SELECT * FROM words WHERE id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %w", err)
	}
	return &word, nil
}

// GetByCollection returns words for a specific collection
func (r *WordRepository) GetByCollection(ctx context.Context, collectionID int64) ([]models.Word, error) {
	var words []models.Word
	err := DB.SelectContext(ctx, &words, DB.Rebind("SELECT * FROM words WHERE collection_id = ? ORDER BY word"), collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get words by collection: %w", err)
	}
	return words, nil
}

// GetByIDs returns the words matching the given IDs. Missing IDs are
// silently omitted, which the session restore path relies on.
func (r *WordRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Word, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT * FROM words WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	var words []models.Word
	err = DB.SelectContext(ctx, &words, DB.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get words by IDs: %w", err)
	}
	return words, nil
}

// Create inserts a new word
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO words (word, translation, example, collection_id, difficulty, pronunciation)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`
		return DB.QueryRowContext(ctx, query,
			word.Word, word.Translation, word.Example,
			word.CollectionID, word.Difficulty, word.Pronunciation,
		).Scan(&word.ID, &word.CreatedAt, &word.UpdatedAt)
	}

	result, err := DB.ExecContext(ctx, `
		INSERT INTO words (word, translation, example, collection_id, difficulty, pronunciation)
		VALUES (?, ?, ?, ?, ?, ?)`,
		word.Word, word.Translation, word.Example,
		word.CollectionID, word.Difficulty, word.Pronunciation,
	)
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	word.ID = id
	return DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM words WHERE id = ?", word.ID,
	).Scan(&word.CreatedAt, &word.UpdatedAt)
}

// Delete removes a word. Its mastery record goes with it via ON DELETE CASCADE.
func (r *WordRepository) Delete(ctx context.Context, id int64) error {
	_, err := DB.ExecContext(ctx, DB.Rebind("DELETE FROM words WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return nil
}
