package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/lexibot/pkg/models"
)

// CollectionRepository handles database operations for word collections
type CollectionRepository struct{}

// NewCollectionRepository creates a new repository instance
func NewCollectionRepository() *CollectionRepository {
	return &CollectionRepository{}
}

// GetAll returns all collections
func (r *CollectionRepository) GetAll(ctx context.Context) ([]models.Collection, error) {
	var collections []models.Collection
	err := DB.SelectContext(ctx, &collections, "SELECT * FROM collections ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to get collections: %w", err)
	}
	return collections, nil
}

// GetByID returns a collection by ID
func (r *CollectionRepository) GetByID(ctx context.Context, id int64) (*models.Collection, error) {
	var c models.Collection
	err := DB.GetContext(ctx, &c, DB.Rebind("SELECT * FROM collections WHERE id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return &c, nil
}

// GetByName returns a collection by its unique name
func (r *CollectionRepository) GetByName(ctx context.Context, name string) (*models.Collection, error) {
	var c models.Collection
	err := DB.GetContext(ctx, &c, DB.Rebind("SELECT * FROM collections WHERE name = ?"), name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection by name: %w", err)
	}
	return &c, nil
}

// Create inserts a new collection
func (r *CollectionRepository) Create(ctx context.Context, c *models.Collection) error {
	if DB.DriverName() == "postgres" {
		return DB.QueryRowContext(ctx,
			"INSERT INTO collections (name) VALUES ($1) RETURNING id, created_at, updated_at",
			c.Name,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	}

	result, err := DB.ExecContext(ctx, "INSERT INTO collections (name) VALUES (?)", c.Name)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	c.ID = id
	return DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM collections WHERE id = ?", c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}
