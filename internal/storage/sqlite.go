// Package storage persists review comments in a local SQLite database
// so notes survive server restarts and branch switches.
package storage

import (
	"log"
	"sync"

	// Pure-Go SQLite driver, registered for database/sql. No CGO, so
	// the binary cross-compiles cleanly.
	"database/sql"

	_ "modernc.org/sqlite"

	apperrors "github.com/diffdeck/diffdeck/internal/errors"
)

// Store persists review comments. It creates the database and tables on
// first use and supports concurrent access through internal locking.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens or creates a SQLite database at the given path and
// applies pending schema migrations. Use ":memory:" for tests.
func NewStore(path string) (*Store, error) {
	// foreign_keys for referential integrity; busy_timeout so a second
	// running instance pointed at the same database doesn't error out
	// immediately on lock contention.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageOpenFailed, "open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.CodeStorageOpenFailed, "ping database", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.CodeStorageOpenFailed, "init schema", err)
	}

	log.Printf("[Storage] Database ready at %s (schema version %d)", path, currentSchemaVersion)
	return store, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
