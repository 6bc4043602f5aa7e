package sqlite

import (
	"database/sql"
	"fmt"
)

// migration represents a single database migration
type migration struct {
	version int
	name    string
	up      string
}

// migrations is the ordered list of all database migrations.
// Each migration should be idempotent and safe to run multiple times.
var migrations = []migration{
	{
		version: 1,
		name:    "create_posts_table",
		up: `
			CREATE TABLE IF NOT EXISTS posts (
				id TEXT PRIMARY KEY,
				slug TEXT NOT NULL,
				title TEXT NOT NULL,
				summary TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL,
				author TEXT NOT NULL DEFAULT '',
				tags TEXT NOT NULL DEFAULT '',
				published INTEGER NOT NULL DEFAULT 1,
				scheduled_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_posts_slug ON posts(slug);

			CREATE INDEX IF NOT EXISTS idx_posts_published_created
			ON posts(created_at DESC)
			WHERE published = 1;
		`,
	},
	{
		version: 2,
		name:    "create_revisions_table",
		up: `
			CREATE TABLE IF NOT EXISTS revisions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
				content TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_revisions_post_id
			ON revisions(post_id, created_at);
		`,
	},
}

// runMigrations executes all pending migrations
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	currentVersion := 0
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", m.version, err)
		}

		if _, err = tx.Exec(m.up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
		}

		_, err = tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			m.version,
			m.name,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
