// Package store handles all database operations.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already taken")
	ErrTokenNotFound = errors.New("token not found")
)

// Store handles all database operations
type Store struct {
	db      *sql.DB
	dialect string
}

// New creates a new store instance. dialect is "sqlite" or "postgres".
func New(db *sql.DB, dialect string) *Store {
	if dialect == "" {
		dialect = "sqlite"
	}
	return &Store{db: db, dialect: dialect}
}

// bind rewrites ? placeholders to $n for PostgreSQL. Queries are written
// once in SQLite form and translated so both backends share one code path.
func (s *Store) bind(query string) string {
	if s.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(fmt.Sprintf("$%d", n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
