package migrations_test

import (
	"context"
	"testing"

	"github.com/playperu/molkky/internal/database"
	"github.com/playperu/molkky/internal/migrations"
)

func TestMigrations(t *testing.T) {
	db, err := database.Open(context.Background(), database.MemoryPath)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	var name string
	err = db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", "results",
	).Scan(&name)
	if err != nil {
		t.Errorf("table results not found: %v", err)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), database.MemoryPath)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(db); err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
}
