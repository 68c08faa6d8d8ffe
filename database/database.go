package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Initialize creates and returns a database connection
func Initialize(databaseURL string) (*sql.DB, error) {
	// Add SQLite-specific parameters for better concurrent access
	if databaseURL == "agrimarket.db" {
		databaseURL = "agrimarket.db?_busy_timeout=30000&_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=1"
	}

	db, err := sql.Open("sqlite3", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database
	if strings.Contains(databaseURL, ":memory:") {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 30000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = memory",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.Printf("Warning: failed to set pragma %s: %v", pragma, err)
		}
	}

	return db, nil
}

// Migrate runs database migrations
func Migrate(db *sql.DB) error {
	migrations := []string{
		createSessionsTable,
		createNotificationsTable,
		createNotificationPreferencesTable,
		createCheckoutAttemptsTable,
		createIndexes,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	role TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	upstream_token TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL,
	revoked_at DATETIME
)`

const createNotificationsTable = `
CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'unread',
	priority TEXT NOT NULL DEFAULT 'medium',
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	sender TEXT,
	link TEXT,
	created_at DATETIME NOT NULL,
	read_at DATETIME
)`

const createNotificationPreferencesTable = `
CREATE TABLE IF NOT EXISTS notification_preferences (
	user_id TEXT PRIMARY KEY,
	preferences TEXT NOT NULL,
	updated_at DATETIME NOT NULL
)`

const createCheckoutAttemptsTable = `
CREATE TABLE IF NOT EXISTS checkout_attempts (
	order_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	idempotency_key TEXT NOT NULL DEFAULT '',
	amount TEXT NOT NULL,
	payment_method TEXT NOT NULL,
	status TEXT NOT NULL,
	payment_url TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_checkout_attempts_user ON checkout_attempts(user_id, created_at DESC);
CREATE UNIQUE INDEX IF NOT EXISTS idx_checkout_attempts_idempotency
	ON checkout_attempts(user_id, idempotency_key) WHERE idempotency_key != ''
`
