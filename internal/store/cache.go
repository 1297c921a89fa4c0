package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/metadata"
)

// GetMetadata returns the cached metadata for whichever of ids are known.
func (s *Store) GetMetadata(ids []string) (map[string]metadata.Metadata, error) {
	found := make(map[string]metadata.Metadata)
	if len(ids) == 0 {
		return found, nil
	}

	stmt, err := s.db.Prepare(
		"SELECT duration_seconds, title, creator, category_id FROM Metadata WHERE item_id = ?")
	if err != nil {
		return nil, fmt.Errorf("preparing metadata query: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		m := metadata.Metadata{ItemID: id}
		err := stmt.QueryRow(id).Scan(&m.DurationSeconds, &m.Title, &m.Creator, &m.CategoryID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading metadata for %q: %w", id, err)
		}
		found[id] = m
	}
	return found, nil
}

// SaveMetadata upserts every entry in one transaction.
func (s *Store) SaveMetadata(entries map[string]metadata.Metadata) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO Metadata (item_id, duration_seconds, title, creator, category_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			duration_seconds=excluded.duration_seconds, title=excluded.title,
			creator=excluded.creator, category_id=excluded.category_id,
			fetched_at=CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("preparing metadata insert: %w", err)
	}
	defer stmt.Close()

	for id, m := range entries {
		if _, err := stmt.Exec(id, m.DurationSeconds, m.Title, m.Creator, m.CategoryID); err != nil {
			return fmt.Errorf("saving metadata for %q: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DatasetKey identifies one pipeline input: the history markup together
// with the credential used to resolve it.
func DatasetKey(markup []byte, credential string) string {
	h := sha256.New()
	h.Write(markup)
	h.Write([]byte{0})
	h.Write([]byte(credential))
	return hex.EncodeToString(h.Sum(nil))
}

// GetDataset returns nil if key has not been stored.
func (s *Store) GetDataset(key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow("SELECT payload FROM Dataset WHERE cache_key = ?", key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	return payload, nil
}

func (s *Store) SaveDataset(key string, payload []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO Dataset (cache_key, payload) VALUES (?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			payload=excluded.payload, created_at=CURRENT_TIMESTAMP`,
		key, payload)
	if err != nil {
		return fmt.Errorf("saving dataset: %w", err)
	}
	return nil
}
