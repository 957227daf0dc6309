package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/sandeepkv93/wird/internal/model"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("repeated migrate up failed: %v", err)
	}

	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	d := model.NewDate(2026, 2, 9)
	if _, err := repo.InsertDate(t.Context(), d, stamp); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}

	got, err := repo.GetRecord(t.Context(), d)
	if err != nil {
		t.Fatalf("get after roundtrip failed: %v", err)
	}
	if got.Date != d || got.MorningDone {
		t.Fatalf("unexpected record after roundtrip: %+v", got)
	}
}
