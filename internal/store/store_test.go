package store

import (
	"path/filepath"
	"testing"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/metadata"
)

func createTestDb(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%s) error: %v", dbPath, err)
	}

	return store
}

func TestNew_MigratesOnce(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	for i := 0; i < 2; i++ {
		s, err := New(dbPath)
		if err != nil {
			t.Fatalf("New(%s) attempt %d error: %v", dbPath, i, err)
		}
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("counting migrations: %v", err)
		}
		if count != 2 {
			t.Errorf("attempt %d: %d migrations recorded, want 2", i, count)
		}
		s.Close()
	}
}

func TestMetadata(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	entries := map[string]metadata.Metadata{
		"a": {ItemID: "a", DurationSeconds: 215, Title: "Song A", Creator: "Artist", CategoryID: "10"},
		"b": {ItemID: "b", DurationSeconds: 61.5, Title: "Song B", Creator: "Other"},
	}
	if err := s.SaveMetadata(entries); err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}

	got, err := s.GetMetadata([]string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetMetadata returned %d entries, want 2", len(got))
	}
	if got["a"] != entries["a"] || got["b"] != entries["b"] {
		t.Errorf("GetMetadata = %+v, want %+v", got, entries)
	}

	// Upsert replaces.
	updated := entries["a"]
	updated.Title = "Song A (Remastered)"
	if err := s.SaveMetadata(map[string]metadata.Metadata{"a": updated}); err != nil {
		t.Fatalf("SaveMetadata (repeat): %v", err)
	}
	got, err = s.GetMetadata([]string{"a"})
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if got["a"].Title != "Song A (Remastered)" {
		t.Errorf("Title = %q after upsert", got["a"].Title)
	}
}

func TestDataset(t *testing.T) {
	s, err := New(InMemory)
	if err != nil {
		t.Fatalf("New(%s): %v", InMemory, err)
	}
	defer s.Close()

	key := DatasetKey([]byte("<html></html>"), "key")
	payload, err := s.GetDataset(key)
	if err != nil {
		t.Fatalf("GetDataset: %v", err)
	}
	if payload != nil {
		t.Errorf("GetDataset on empty cache = %q, want nil", payload)
	}

	if err := s.SaveDataset(key, []byte(`{"events":[]}`)); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}
	payload, err = s.GetDataset(key)
	if err != nil {
		t.Fatalf("GetDataset: %v", err)
	}
	if string(payload) != `{"events":[]}` {
		t.Errorf("GetDataset = %q", payload)
	}
}

func TestDatasetKey(t *testing.T) {
	base := DatasetKey([]byte("markup"), "key")
	if base != DatasetKey([]byte("markup"), "key") {
		t.Errorf("DatasetKey is not stable")
	}
	if base == DatasetKey([]byte("markup"), "other") {
		t.Errorf("DatasetKey ignores the credential")
	}
	if DatasetKey([]byte("ab"), "c") == DatasetKey([]byte("a"), "bc") {
		t.Errorf("DatasetKey does not separate markup from credential")
	}
}
