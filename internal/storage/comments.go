package storage

// comments.go contains Store methods for review comment CRUD.

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/diffdeck/diffdeck/internal/errors"
)

// Comment is a reviewer note attached to a line of a file in the diff.
type Comment struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	Line      int       `json:"line"`
	Body      string    `json:"body"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"createdAt"`
}

// SaveComment persists a new comment. An empty ID is filled with a
// fresh UUID; CreatedAt is set if zero.
func (s *Store) SaveComment(c *Comment) error {
	if c == nil {
		return apperrors.New(apperrors.CodeStorageQueryFailed, "comment cannot be nil")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		INSERT OR REPLACE INTO comments (id, file, line, body, resolved, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		c.ID,
		c.File,
		c.Line,
		c.Body,
		boolToInt(c.Resolved),
		c.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageQueryFailed, "save comment", err)
	}

	return nil
}

// ListComments returns comments ordered by creation time, optionally
// filtered to one file (empty file means all files).
func (s *Store) ListComments(file string) ([]*Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, file, line, body, resolved, created_at
		FROM comments
	`
	var args []any
	if file != "" {
		query += " WHERE file = ?"
		args = append(args, file)
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageQueryFailed, "list comments", err)
	}
	defer rows.Close()

	comments := []*Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorageQueryFailed, "scan comment", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageQueryFailed, "iterate comments", err)
	}

	return comments, nil
}

// GetComment retrieves a single comment by ID.
func (s *Store) GetComment(id string) (*Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const query = `
		SELECT id, file, line, body, resolved, created_at
		FROM comments
		WHERE id = ?
	`

	c, err := scanComment(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.CodeStorageNotFound, "comment not found: "+id)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageQueryFailed, "get comment", err)
	}

	return c, nil
}

// DeleteComment removes a comment by ID.
func (s *Store) DeleteComment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageQueryFailed, "delete comment", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageQueryFailed, "delete comment", err)
	}
	if n == 0 {
		return apperrors.New(apperrors.CodeStorageNotFound, "comment not found: "+id)
	}

	return nil
}

// SetResolved flips a comment's resolved flag.
func (s *Store) SetResolved(id string, resolved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE comments SET resolved = ? WHERE id = ?", boolToInt(resolved), id)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageQueryFailed, "resolve comment", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageQueryFailed, "resolve comment", err)
	}
	if n == 0 {
		return apperrors.New(apperrors.CodeStorageNotFound, "comment not found: "+id)
	}

	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (*Comment, error) {
	var (
		c         Comment
		resolved  int
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.File, &c.Line, &c.Body, &resolved, &createdAt); err != nil {
		return nil, err
	}

	c.Resolved = resolved != 0

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	c.CreatedAt = ts

	return &c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
