package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. The backend is chosen by
// the DB_TYPE environment variable: "sqlite" (default) or "postgres".
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var db *sqlx.DB
	var err error

	switch dbType {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
		}
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
	case "sqlite":
		dbPath := os.Getenv("DB_PATH")
		if dbPath == "" {
			dataDir := "data"
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
			dbPath = filepath.Join(dataDir, "lexibot.db")
		}
		db, err = sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to sqlite: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		return fmt.Errorf("unknown DB_TYPE %q", dbType)
	}

	DB = db
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if DB.DriverName() == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS collections (
			id %s,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, serial),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS words (
			id %s,
			word TEXT NOT NULL,
			translation TEXT NOT NULL,
			example TEXT DEFAULT '',
			collection_id INTEGER NOT NULL,
			difficulty INTEGER DEFAULT 1,
			pronunciation TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (collection_id) REFERENCES collections(id),
			UNIQUE(word, collection_id)
		)`, serial),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS mastery_records (
			id %s,
			collection_id INTEGER NOT NULL,
			word_id INTEGER NOT NULL,
			ease_factor REAL DEFAULT 2.5,
			interval_days INTEGER DEFAULT 0,
			repetitions INTEGER DEFAULT 0,
			times_seen INTEGER DEFAULT 0,
			times_correct INTEGER DEFAULT 0,
			correct_streak INTEGER DEFAULT 0,
			wrong_streak INTEGER DEFAULT 0,
			fast_responses INTEGER DEFAULT 0,
			slow_responses INTEGER DEFAULT 0,
			last_outcome TEXT DEFAULT '',
			last_mode TEXT DEFAULT '',
			last_reviewed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			next_due_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE,
			FOREIGN KEY (collection_id) REFERENCES collections(id),
			UNIQUE(word_id)
		)`, serial),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS review_plans (
			id %s,
			collection_id INTEGER NOT NULL,
			stage INTEGER NOT NULL DEFAULT 1,
			next_review_at TIMESTAMP NOT NULL,
			completed_stages TEXT DEFAULT '[]',
			started_at TIMESTAMP NOT NULL,
			last_completed_at TIMESTAMP,
			is_completed BOOLEAN DEFAULT FALSE,
			total_words INTEGER DEFAULT 0,
			word_ids TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (collection_id) REFERENCES collections(id)
		)`, serial),
		`
		CREATE TABLE IF NOT EXISTS review_lock (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			collection_id INTEGER NOT NULL,
			stage INTEGER NOT NULL,
			locked_at TIMESTAMP NOT NULL
		)`,
		`
		CREATE TABLE IF NOT EXISTS study_sessions (
			mode TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS user_settings (
			id %s,
			words_per_day INTEGER DEFAULT 10,
			notification_hour INTEGER DEFAULT 9,
			notification_enabled BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, serial),
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
