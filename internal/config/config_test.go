package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HTTP_ADDR", "BACKEND_BASE_URL", "BACKEND_TIMEOUT", "AUTH_JWT_SECRET", "DATABASE_URL", "PG_DSN",
		"LOG_LEVEL", "LOG_FORMAT", "PORTAL_TIMEZONE", "CHART_MAX_POINTS",
		"BRANDING_TITLE", "BRANDING_LOGO_PATH", "BRANDING_WATERMARK",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadYAMLWithEnvOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "portal.yaml")
	writeFile(t, path, `
backend:
  base_url: http://backend.local/api
  timeout: 5s
consumption:
  timezone: America/Bogota
  max_chart_points: 40
branding:
  title: AquaSmart Prueba
`)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CHART_MAX_POINTS", "30")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.BaseURL != "http://backend.local/api" || cfg.Backend.Timeout != 5*time.Second {
		t.Fatalf("unexpected backend config %+v", cfg.Backend)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("expected env addr override, got %s", cfg.Server.Addr)
	}
	if cfg.Consumption.MaxChartPoints != 30 {
		t.Fatalf("expected env chart points override, got %d", cfg.Consumption.MaxChartPoints)
	}
	if cfg.Branding.Title != "AquaSmart Prueba" || cfg.Branding.Watermark != "AquaSmart" {
		t.Fatalf("unexpected branding %+v", cfg.Branding)
	}
	if cfg.Location().String() != "America/Bogota" {
		t.Fatalf("unexpected location %s", cfg.Location())
	}
}

func TestLoadRequiresBackend(t *testing.T) {
	clearEnv(t)
	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "BACKEND_BASE_URL") {
		t.Fatalf("expected missing backend error, got %v", err)
	}
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKEND_BASE_URL", "http://backend.local")
	t.Setenv("PORTAL_TIMEZONE", "Mars/Olympus")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected timezone error")
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, "BACKEND_BASE_URL=http://from-dotenv\nLOG_LEVEL=debug\n")
	t.Setenv("LOG_LEVEL", "warn")
	os.Unsetenv("BACKEND_BASE_URL")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("BACKEND_BASE_URL"); got != "http://from-dotenv" {
		t.Fatalf("expected value from .env, got %q", got)
	}
	if got := os.Getenv("LOG_LEVEL"); got != "warn" {
		t.Fatalf("expected existing value kept, got %q", got)
	}
}

func TestHolderReloadNotifiesListeners(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "portal.yaml")
	writeFile(t, path, "backend:\n  base_url: http://backend.local\nbranding:\n  title: Uno\n")

	holder, err := NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}
	defer holder.Stop()

	var titles []string
	holder.OnChange(func(cfg *Config) { titles = append(titles, cfg.Branding.Title) })

	writeFile(t, path, "backend:\n  base_url: http://backend.local\nbranding:\n  title: Dos\n")
	if err := holder.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if holder.Get().Branding.Title != "Dos" {
		t.Fatalf("expected reloaded title, got %s", holder.Get().Branding.Title)
	}

	writeFile(t, path, "backend: [broken")
	if err := holder.Reload(); err == nil {
		t.Fatalf("expected reload error")
	}
	if holder.Get().Branding.Title != "Dos" {
		t.Fatalf("expected previous config kept")
	}
	if len(titles) != 1 || titles[0] != "Dos" {
		t.Fatalf("unexpected notifications %v", titles)
	}
}
