package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"enrollment-assessment/internal/domain"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("WEBHOOK_URL", "")
	t.Setenv("BOOKING_URL", "")
	t.Setenv("FORM_EMBED_SCRIPT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Fatalf("expected memory driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Webhook.URL != "" || cfg.Booking.URL != "" {
		t.Fatalf("expected empty integrations, got %+v", cfg)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: "9090"
storage:
  driver: sqlite
sqlite:
  path: /tmp/assessment.db
quiz:
  feedback_delay: 150ms
webhook:
  url: https://file.example/hook
booking:
  url: https://file.example/book
`)
	t.Setenv("WEBHOOK_URL", "https://env.example/hook")
	t.Setenv("BOOKING_URL", "")
	t.Setenv("FORM_EMBED_SCRIPT", "https://env.example/embed.js")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Storage.Driver != DriverSQLite || cfg.SQLite.Path != "/tmp/assessment.db" {
		t.Fatalf("unexpected file values %+v", cfg)
	}
	if cfg.Webhook.URL != "https://env.example/hook" {
		t.Fatalf("expected env webhook, got %q", cfg.Webhook.URL)
	}
	if cfg.Booking.URL != "https://file.example/book" {
		t.Fatalf("expected file booking url, got %q", cfg.Booking.URL)
	}
	if cfg.Booking.FormEmbedScript != "https://env.example/embed.js" {
		t.Fatalf("expected env embed script, got %q", cfg.Booking.FormEmbedScript)
	}
	if d := TTLDuration(cfg.Quiz.FeedbackDelay, time.Second); d != 150*time.Millisecond {
		t.Fatalf("expected 150ms, got %v", d)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "server: [")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback, got %v", d)
	}
	if d := TTLDuration("soon", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for invalid input, got %v", d)
	}
}

func TestLoadCatalog(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
questions:
  - category: Clarify
    prompt: Do you know your ideal student?
    options:
      - {text: Yes, score: 3}
      - {text: No, score: 0}
  - category: Excite
    prompt: Do you celebrate milestones?
    options:
      - {text: Always, score: 3}
      - {text: Sometimes, score: 1}
`)
	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", catalog.Len())
	}
	if catalog.Questions[1].Category != domain.CategoryExcite || catalog.Questions[1].MaxScore() != 3 {
		t.Fatalf("unexpected question %+v", catalog.Questions[1])
	}
}

func TestLoadCatalogValidates(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
questions:
  - category: Clarify
    prompt: Too generous
    options:
      - {text: Yes, score: 5}
`)
	_, err := LoadCatalog(path)
	if !errors.Is(err, domain.ErrCatalogInvalid) {
		t.Fatalf("expected ErrCatalogInvalid, got %v", err)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadExampleCatalog(t *testing.T) {
	catalog, err := LoadCatalog(filepath.Join("..", "..", "config", "catalog.example.yaml"))
	if err != nil {
		t.Fatalf("load example catalog: %v", err)
	}
	if catalog.Len() != 2 || catalog.Questions[0].MaxScore() != 3 {
		t.Fatalf("unexpected example catalog %+v", catalog)
	}
}
