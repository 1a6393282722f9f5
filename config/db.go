// config/db.go
package config

import (
	"database/sql"
	"log"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDatabasePath is used when DATABASE_PATH is not set.
const DefaultDatabasePath = "iab_finance.db"

// TimeLayout is the text CURRENT_TIMESTAMP produces. Every timestamp is
// stored in this exact format so SQL text comparisons between stored values
// and CURRENT_TIMESTAMP stay consistent.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t for storage in, or comparison against, a column
// written in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ConnectDB opens the SQLite database named by DATABASE_PATH, applies the
// schema and returns the handle. Fatal on any error: the process is useless
// without its database.
func ConnectDB() *sql.DB {
	path := os.Getenv("DATABASE_PATH")
	if path == "" {
		path = DefaultDatabasePath
	}

	db, err := OpenDB(path)
	if err != nil {
		log.Fatal("database connection error:", err)
	}

	log.Printf("Connected to database at %s", path)
	return db
}

// OpenDB opens and migrates a database at the given path. Tests use it
// directly with ":memory:".
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// modernc.org/sqlite serializes access per connection; a single
	// connection avoids SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, err
		}
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates every table the application uses. Statements are
// idempotent so startup can run them unconditionally.
func Migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('root', 'admin', 'editor', 'viewer')),
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS user_permissions (
			user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			can_create INTEGER NOT NULL DEFAULT 0,
			can_edit INTEGER NOT NULL DEFAULT 0,
			can_delete INTEGER NOT NULL DEFAULT 0,
			can_manage_users INTEGER NOT NULL DEFAULT 0,
			can_view_reports INTEGER NOT NULL DEFAULT 0,
			can_manage_categories INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS user_categories (
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			category_id TEXT NOT NULL,
			PRIMARY KEY (user_id, category_id)
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			icon TEXT NOT NULL,
			color TEXT NOT NULL,
			slug TEXT UNIQUE NOT NULL,
			is_system INTEGER NOT NULL DEFAULT 0,
			is_public INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS movements (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			description TEXT NOT NULL,
			amount REAL NOT NULL CHECK (amount > 0),
			type TEXT NOT NULL CHECK (type IN ('entrada', 'saida')),
			category_id TEXT NOT NULL REFERENCES categories(id),
			created_by TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_movements_category ON movements(category_id)`,
		`CREATE TABLE IF NOT EXISTS avatars (
			user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			data TEXT NOT NULL,
			background_color TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS backup_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			backup_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			changes_count INTEGER NOT NULL DEFAULT 0,
			email_sent INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
