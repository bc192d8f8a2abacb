package models

import "time"

// Word represents a single vocabulary entry to be learned.
type Word struct {
	ID            int64     `json:"id" db:"id"`
	Word          string    `json:"word" db:"word"`
	Translation   string    `json:"translation" db:"translation"`
	Example       string    `json:"example" db:"example"`
	CollectionID  int64     `json:"collection_id" db:"collection_id"`
	Difficulty    int       `json:"difficulty" db:"difficulty"` // 1-5 scale
	Pronunciation string    `json:"pronunciation" db:"pronunciation"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
