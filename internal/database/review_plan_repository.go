package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/lexibot/pkg/models"
)

// ReviewPlanRepository handles database operations for review plans
type ReviewPlanRepository struct{}

// NewReviewPlanRepository creates a new repository instance
func NewReviewPlanRepository() *ReviewPlanRepository {
	return &ReviewPlanRepository{}
}

// planRow mirrors the review_plans table; slice fields are stored as JSON text.
type planRow struct {
	ID              int64        `db:"id"`
	CollectionID    int64        `db:"collection_id"`
	Stage           int          `db:"stage"`
	NextReviewAt    time.Time    `db:"next_review_at"`
	CompletedStages string       `db:"completed_stages"`
	StartedAt       time.Time    `db:"started_at"`
	LastCompletedAt sql.NullTime `db:"last_completed_at"`
	IsCompleted     bool         `db:"is_completed"`
	TotalWords      int          `db:"total_words"`
	WordIDs         string       `db:"word_ids"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}

func (row *planRow) toModel() (*models.ReviewPlan, error) {
	plan := &models.ReviewPlan{
		ID:           row.ID,
		CollectionID: row.CollectionID,
		Stage:        row.Stage,
		NextReviewAt: row.NextReviewAt,
		StartedAt:    row.StartedAt,
		IsCompleted:  row.IsCompleted,
		TotalWords:   row.TotalWords,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.LastCompletedAt.Valid {
		t := row.LastCompletedAt.Time
		plan.LastCompletedAt = &t
	}
	if row.CompletedStages != "" {
		if err := json.Unmarshal([]byte(row.CompletedStages), &plan.CompletedStages); err != nil {
			return nil, fmt.Errorf("failed to decode completed stages: %w", err)
		}
	}
	if row.WordIDs != "" {
		if err := json.Unmarshal([]byte(row.WordIDs), &plan.WordIDs); err != nil {
			return nil, fmt.Errorf("failed to decode word IDs: %w", err)
		}
	}
	return plan, nil
}

func encodePlanSlices(plan *models.ReviewPlan) (stages, wordIDs string, err error) {
	s, err := json.Marshal(plan.CompletedStages)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode completed stages: %w", err)
	}
	stages = string(s)
	if plan.CompletedStages == nil {
		stages = "[]"
	}
	if len(plan.WordIDs) > 0 {
		w, err := json.Marshal(plan.WordIDs)
		if err != nil {
			return "", "", fmt.Errorf("failed to encode word IDs: %w", err)
		}
		wordIDs = string(w)
	}
	return stages, wordIDs, nil
}

// GetByID returns a plan by ID, or ErrNotFound.
func (r *ReviewPlanRepository) GetByID(ctx context.Context, id int64) (*models.ReviewPlan, error) {
	var row planRow
	err := DB.GetContext(ctx, &row, DB.Rebind("SELECT * FROM review_plans WHERE id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review plan: %w", err)
	}
	return row.toModel()
}

// GetByCollection returns all plans for a collection, newest first.
func (r *ReviewPlanRepository) GetByCollection(ctx context.Context, collectionID int64) ([]*models.ReviewPlan, error) {
	var rows []planRow
	err := DB.SelectContext(ctx, &rows,
		DB.Rebind("SELECT * FROM review_plans WHERE collection_id = ? ORDER BY started_at DESC"), collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review plans: %w", err)
	}
	plans := make([]*models.ReviewPlan, 0, len(rows))
	for i := range rows {
		plan, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// GetIncomplete returns every plan still working through the curve,
// oldest next-review first.
func (r *ReviewPlanRepository) GetIncomplete(ctx context.Context) ([]*models.ReviewPlan, error) {
	var rows []planRow
	err := DB.SelectContext(ctx, &rows,
		"SELECT * FROM review_plans WHERE is_completed = false ORDER BY next_review_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to get incomplete review plans: %w", err)
	}
	plans := make([]*models.ReviewPlan, 0, len(rows))
	for i := range rows {
		plan, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// Create inserts a new plan
func (r *ReviewPlanRepository) Create(ctx context.Context, plan *models.ReviewPlan) error {
	stages, wordIDs, err := encodePlanSlices(plan)
	if err != nil {
		return err
	}

	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO review_plans (
				collection_id, stage, next_review_at, completed_stages,
				started_at, last_completed_at, is_completed, total_words, word_ids
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at
		`
		return DB.QueryRowContext(ctx, query,
			plan.CollectionID, plan.Stage, plan.NextReviewAt, stages,
			plan.StartedAt, plan.LastCompletedAt, plan.IsCompleted, plan.TotalWords, wordIDs,
		).Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt)
	}

	result, err := DB.ExecContext(ctx, `
		INSERT INTO review_plans (
			collection_id, stage, next_review_at, completed_stages,
			started_at, last_completed_at, is_completed, total_words, word_ids
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.CollectionID, plan.Stage, plan.NextReviewAt, stages,
		plan.StartedAt, plan.LastCompletedAt, plan.IsCompleted, plan.TotalWords, wordIDs,
	)
	if err != nil {
		return fmt.Errorf("failed to create review plan: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	plan.ID = id
	return DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM review_plans WHERE id = ?", plan.ID,
	).Scan(&plan.CreatedAt, &plan.UpdatedAt)
}

// Update persists the mutable fields of an advanced plan.
func (r *ReviewPlanRepository) Update(ctx context.Context, plan *models.ReviewPlan) error {
	stages, wordIDs, err := encodePlanSlices(plan)
	if err != nil {
		return err
	}

	result, err := DB.ExecContext(ctx, DB.Rebind(`
		UPDATE review_plans SET
			stage = ?,
			next_review_at = ?,
			completed_stages = ?,
			last_completed_at = ?,
			is_completed = ?,
			total_words = ?,
			word_ids = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`),
		plan.Stage, plan.NextReviewAt, stages, plan.LastCompletedAt,
		plan.IsCompleted, plan.TotalWords, wordIDs, plan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review plan: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
