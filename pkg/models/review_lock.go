package models

import "time"

// ReviewLock is the single persisted token that marks one collection's
// review flow as in progress. At most one lock row exists at any time.
type ReviewLock struct {
	CollectionID int64     `json:"collection_id" db:"collection_id"`
	Stage        int       `json:"stage" db:"stage"`
	LockedAt     time.Time `json:"locked_at" db:"locked_at"`
}

// Age returns how long the lock has been held.
func (l *ReviewLock) Age(now time.Time) time.Duration {
	return now.Sub(l.LockedAt)
}
