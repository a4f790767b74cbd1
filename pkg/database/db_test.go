package database

import (
	"path/filepath"
	"testing"
)

func TestOpenAndMigrateFile(t *testing.T) {
	cfg := Config{Path: filepath.Join(t.TempDir(), "nested", "data.db")}
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// second run must be a no-op
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate again: %v", err)
	}

	for _, table := range []string{"kv", "records", "seqs"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestMemoryConfig(t *testing.T) {
	cfg := Config{Path: "file:dbtest?mode=memory&cache=shared"}
	if !cfg.IsMemory() {
		t.Fatal("expected memory config")
	}
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
}
