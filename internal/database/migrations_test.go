package database

import (
	"strings"
	"testing"
	"testing/fstest"

	"logiscore/migrations"
)

func TestReadMigrationsOrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"002_add_reviews.up.sql":      {Data: []byte("CREATE TABLE reviews (id INT);")},
		"001_initial_schema.up.sql":   {Data: []byte("CREATE TABLE users (id INT);")},
		"001_initial_schema.down.sql": {Data: []byte("DROP TABLE users;")},
		"README.md":                   {Data: []byte("ignored")},
		"nounderscore.up.sql":         {Data: []byte("ignored")},
	}

	got, err := ReadMigrations(fsys)
	if err != nil {
		t.Fatalf("ReadMigrations failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(got))
	}
	if got[0].Version != "001" || got[1].Version != "002" {
		t.Errorf("unexpected order: %s, %s", got[0].Version, got[1].Version)
	}
	if got[0].Title != "initial schema" {
		t.Errorf("expected title 'initial schema', got %q", got[0].Title)
	}
	if got[1].Checksum != calculateChecksum("CREATE TABLE reviews (id INT);") {
		t.Errorf("checksum mismatch for %s", got[1].Version)
	}
}

func TestValidateChecksums(t *testing.T) {
	migrations := []Migration{
		{Version: "001", Title: "initial schema", Checksum: "aaa"},
		{Version: "002", Title: "reviews", Checksum: "bbb"},
	}

	if err := validateChecksums(migrations, map[string]string{"001": "aaa"}); err != nil {
		t.Errorf("expected no error for matching checksum, got %v", err)
	}

	if err := validateChecksums(migrations, map[string]string{"001": ""}); err != nil {
		t.Errorf("expected legacy rows without checksum to pass, got %v", err)
	}

	err := validateChecksums(migrations, map[string]string{"002": "changed"})
	if err == nil {
		t.Fatal("expected error for modified migration")
	}
	if !strings.Contains(err.Error(), "002") {
		t.Errorf("error should name the modified version: %v", err)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := ReadMigrations(migrations.FS)
	if err != nil {
		t.Fatalf("ReadMigrations failed: %v", err)
	}
	if len(got) < 3 {
		t.Fatalf("expected at least 3 embedded migrations, got %d", len(got))
	}

	var sawScores bool
	for _, m := range got {
		if strings.Contains(m.UpSQL, "review_category_scores") && strings.Contains(m.UpSQL, "ON DELETE CASCADE") {
			sawScores = true
		}
	}
	if !sawScores {
		t.Error("expected review_category_scores to cascade on review deletion")
	}
}
