package store

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	apply   func(tx *sql.Tx) error
}

type migrationRunner struct {
	db         *sql.DB
	migrations []migration
}

func newMigrationRunner(db *sql.DB) *migrationRunner {
	return &migrationRunner{
		db: db,
		migrations: []migration{
			{version: 1, name: "metadata_cache", apply: migrateV001},
			{version: 2, name: "dataset_cache", apply: migrateV002},
		},
	}
}

// run applies every migration not yet recorded in schema_migrations.
func (r *migrationRunner) run() error {
	if _, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	for _, m := range r.migrations {
		var count int
		if err := r.db.QueryRow(
			"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version,
		).Scan(&count); err != nil {
			return fmt.Errorf("checking migration %d: %w", m.version, err)
		}
		if count > 0 {
			continue
		}

		if err := r.apply(m); err != nil {
			return fmt.Errorf("applying migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

func (r *migrationRunner) apply(m migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := m.apply(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name,
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}
	return tx.Commit()
}

func migrateV001(tx *sql.Tx) error {
	_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS Metadata (
  item_id TEXT PRIMARY KEY,
  duration_seconds REAL NOT NULL,
  title TEXT NOT NULL,
  creator TEXT NOT NULL,
  category_id TEXT NOT NULL DEFAULT '',
  fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`)
	return err
}

func migrateV002(tx *sql.Tx) error {
	_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS Dataset (
  cache_key TEXT PRIMARY KEY,
  payload BLOB NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`)
	return err
}
