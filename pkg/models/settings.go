package models

import "time"

// UserSettings holds the learner's preferences. The application is
// single-user, so exactly one row exists.
type UserSettings struct {
	ID                  int64     `json:"id" db:"id"`
	WordsPerDay         int       `json:"words_per_day" db:"words_per_day"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultUserSettings returns settings used until the learner changes them.
func DefaultUserSettings() *UserSettings {
	now := time.Now()
	return &UserSettings{
		WordsPerDay:         10,
		NotificationHour:    9,
		NotificationEnabled: true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}
