package database

import (
	"strings"
	"testing"
)

func TestDSNCarriesTimeSettings(t *testing.T) {
	got := dsn("app", "secret", "db.local", "3306", "cinema")
	for _, want := range []string{"app:secret@tcp(db.local:3306)/cinema", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(got, want) {
			t.Fatalf("dsn = %q, missing %q", got, want)
		}
	}
}

func TestDSNOmitsEmptyPassword(t *testing.T) {
	got := dsn("app", "", "localhost", "3306", "cinema")
	if !strings.HasPrefix(got, "app@tcp(") {
		t.Fatalf("dsn = %q, want credentials without a password separator", got)
	}
}
