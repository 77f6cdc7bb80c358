package storage

import (
	"fmt"
	"log"
	"time"
)

// currentSchemaVersion is the current database schema version.
// Increment when making schema changes and add migration logic.
const currentSchemaVersion = 1

// initSchema creates the required tables if they don't exist.
// Idempotent: safe to run against an already-migrated database.
func (s *Store) initSchema() error {
	const schemaVersionTable = `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		);
	`

	if _, err := s.db.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("check schema version: %w", err)
	}

	if version < 1 {
		if err := s.migrateToV1(); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	return nil
}

// migrateToV1 creates the initial schema (comments table).
func (s *Store) migrateToV1() error {
	log.Printf("[Storage] Applying migration to schema version 1")

	// Timestamps are stored as RFC3339 strings for readability and
	// portability.
	const commentsTable = `
		CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			file TEXT NOT NULL,
			line INTEGER NOT NULL,
			body TEXT NOT NULL,
			resolved INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		-- Comments are almost always fetched per file.
		CREATE INDEX IF NOT EXISTS idx_comments_file ON comments(file);
	`

	if _, err := s.db.Exec(commentsTable); err != nil {
		return fmt.Errorf("create comments table: %w", err)
	}

	_, err := s.db.Exec(
		"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
		1,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return nil
}
