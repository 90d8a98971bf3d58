package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRunReturnsConfigError(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_DSN", "")

	err := run("", filepath.Join(t.TempDir(), "missing.env"), zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "backend.base_url") {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestRunReturnsDatabaseError(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("DATABASE_URL", "postgres://portal@127.0.0.1:1/portal?sslmode=disable&connect_timeout=1")

	err := run("", filepath.Join(t.TempDir(), "missing.env"), zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "db ping") {
		t.Fatalf("expected db ping error, got %v", err)
	}
}
