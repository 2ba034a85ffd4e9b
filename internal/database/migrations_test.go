package database

import (
	"strings"
	"testing"
)

func TestMigrationSource_ParsesEmbeddedFiles(t *testing.T) {
	migrations, err := migrationSource().FindMigrations()
	if err != nil {
		t.Fatalf("failed to load embedded migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}

	first := migrations[0]
	if first.Id != "001_users.sql" {
		t.Errorf("unexpected first migration %q", first.Id)
	}
	if len(first.Up) == 0 || !strings.Contains(first.Up[0], "CREATE TABLE IF NOT EXISTS users") {
		t.Errorf("unexpected up statements: %v", first.Up)
	}
	if len(first.Down) == 0 {
		t.Error("expected a down migration")
	}
}
