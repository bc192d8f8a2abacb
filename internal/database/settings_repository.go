package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/lexibot/pkg/models"
)

// SettingsRepository handles the single user_settings row.
type SettingsRepository struct{}

// NewSettingsRepository creates a new repository instance
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

// Get returns the settings row, creating it with defaults on first access.
func (r *SettingsRepository) Get(ctx context.Context) (*models.UserSettings, error) {
	var s models.UserSettings
	err := DB.GetContext(ctx, &s, "SELECT * FROM user_settings ORDER BY id LIMIT 1")
	if err == sql.ErrNoRows {
		defaults := models.DefaultUserSettings()
		if err := r.create(ctx, defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user settings: %w", err)
	}
	return &s, nil
}

// Update persists changed preferences.
func (r *SettingsRepository) Update(ctx context.Context, s *models.UserSettings) error {
	_, err := DB.ExecContext(ctx, DB.Rebind(`
		UPDATE user_settings SET
			words_per_day = ?,
			notification_hour = ?,
			notification_enabled = ?,
			updated_at = ?
		WHERE id = ?`),
		s.WordsPerDay, s.NotificationHour, s.NotificationEnabled, time.Now(), s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) create(ctx context.Context, s *models.UserSettings) error {
	if DB.DriverName() == "postgres" {
		return DB.QueryRowContext(ctx, `
			INSERT INTO user_settings (words_per_day, notification_hour, notification_enabled)
			VALUES ($1, $2, $3)
			RETURNING id`,
			s.WordsPerDay, s.NotificationHour, s.NotificationEnabled,
		).Scan(&s.ID)
	}

	result, err := DB.ExecContext(ctx, `
		INSERT INTO user_settings (words_per_day, notification_hour, notification_enabled)
		VALUES (?, ?, ?)`,
		s.WordsPerDay, s.NotificationHour, s.NotificationEnabled,
	)
	if err != nil {
		return fmt.Errorf("failed to create user settings: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	s.ID = id
	return nil
}
