package main

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"testing"

	"github.com/pressly/goose/v3"
)

// repoMigrations returns db/migrations relative to this file.
func repoMigrations(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", "db", "migrations"))
}

func TestCollectMigrations_OrderedSchema(t *testing.T) {
	ms, err := goose.CollectMigrations(repoMigrations(t), 0, goose.MaxVersion)
	if err != nil {
		t.Fatalf("expected migrations to parse, got error: %v", err)
	}

	// users must exist before saved_artworks references it.
	want := []string{"create_users", "create_saved_artworks", "create_token_blacklist", "create_api_cache"}
	if len(ms) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(ms))
	}
	for i, m := range ms {
		if got := filepath.Base(m.Source); !regexp.MustCompile(`^\d+_` + want[i] + `\.sql$`).MatchString(got) {
			t.Fatalf("migration %d: expected %s, got %s", i, want[i], got)
		}
	}
}

func TestSchema_Constraints(t *testing.T) {
	dir := repoMigrations(t)
	read := func(suffix string) string {
		t.Helper()
		matches, err := filepath.Glob(filepath.Join(dir, "*_"+suffix+".sql"))
		if err != nil || len(matches) != 1 {
			t.Fatalf("expected one %s migration, got %v (%v)", suffix, matches, err)
		}
		b, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", matches[0], err)
		}
		return string(b)
	}

	cases := []struct {
		file string
		name string
		re   string
	}{
		{"create_users", "unique email", `(?i)email\s+VARCHAR\(255\)\s+NOT NULL\s+UNIQUE`},
		{"create_saved_artworks", "one save per user and artwork", `(?i)UNIQUE\s*\(\s*user_id\s*,\s*artwork_id\s*\)`},
		{"create_saved_artworks", "entries go with their user", `(?i)user_id\s+UUID\s+NOT NULL\s+REFERENCES\s+users\s*\(\s*id\s*\)\s+ON DELETE CASCADE`},
		{"create_saved_artworks", "newest-first listing index", `(?i)ON\s+saved_artworks\s*\(\s*user_id\s*,\s*created_at\s+DESC\s*\)`},
		{"create_token_blacklist", "jti is the key", `(?i)jti\s+TEXT\s+PRIMARY KEY`},
		{"create_token_blacklist", "expiry index for cleanup", `(?i)ON\s+token_blacklist\s*\(\s*expires_at\s*\)`},
		{"create_api_cache", "cache key is the key", `(?i)cache_key\s+TEXT\s+PRIMARY KEY`},
		{"create_api_cache", "absolute expiry", `(?i)expires_at\s+TIMESTAMPTZ\s+NOT NULL`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !regexp.MustCompile(tc.re).MatchString(read(tc.file)) {
				t.Fatalf("%s: no match for %s", tc.file, tc.re)
			}
		})
	}
}
