// Package store is the sqlite-backed cache of looked-up metadata and
// finished pipeline results.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// InMemory keeps the cache for the life of the process only.
const InMemory = ":memory:"

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dbPath == InMemory {
		// Every new connection to :memory: is a separate empty database.
		db.SetMaxOpenConns(1)
	}

	if err := newMigrationRunner(db).run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
