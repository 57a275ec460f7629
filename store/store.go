package store

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrDuplicate reports a unique constraint violation on insert.
var ErrDuplicate = errors.New("store: duplicate entry")

// ErrNotFound reports a missing row.
var ErrNotFound = errors.New("store: not found")

// Store provides access to all persistent bot data.
type Store struct {
	db *sqlx.DB
}

// New wraps a connected database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// isUniqueViolation detects the Postgres unique_violation error class.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
