//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
bot:
  token: "123:abc"
database:
  url: "postgres://localhost/course"
redis:
  url: "localhost:6379"
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Bot.Mode != "polling" {
		t.Fatalf("mode = %q", cfg.Bot.Mode)
	}
	if cfg.Bot.Workers != 8 {
		t.Fatalf("workers = %d", cfg.Bot.Workers)
	}
	if cfg.Content.MaxDay != 7 || cfg.Content.ChunkLimit != 3500 {
		t.Fatalf("content defaults: %+v", cfg.Content)
	}
	if cfg.Content.ChunkDelay != 500*time.Millisecond {
		t.Fatalf("chunk delay = %v", cfg.Content.ChunkDelay)
	}
	if cfg.Content.Locale != "km" {
		t.Fatalf("locale = %q", cfg.Content.Locale)
	}
	if cfg.Web.Port != 5000 {
		t.Fatalf("web port = %d", cfg.Web.Port)
	}
	if cfg.Reminder.Interval != time.Hour || cfg.Reminder.InactiveWindow != 48*time.Hour {
		t.Fatalf("reminder defaults: %+v", cfg.Reminder)
	}
}

func TestLoadConfigRequiresToken(t *testing.T) {
	yaml := `
database:
  url: "postgres://localhost/course"
redis:
  url: "localhost:6379"
`
	if _, err := LoadConfig(writeConfig(t, yaml), false); err == nil {
		t.Fatalf("expected missing token error")
	}
}

func TestLoadConfigRejectsUnknownMode(t *testing.T) {
	bad := writeConfig(t, `
bot:
  token: "123:abc"
  mode: "carrier-pigeon"
database:
  url: "postgres://localhost/course"
redis:
  url: "localhost:6379"
`)
	if _, err := LoadConfig(bad, false); err == nil {
		t.Fatalf("expected mode validation error")
	}
}

func TestLoadConfigWebhookNeedsURL(t *testing.T) {
	bad := writeConfig(t, `
bot:
  token: "123:abc"
  mode: "webhook"
database:
  url: "postgres://localhost/course"
redis:
  url: "localhost:6379"
`)
	if _, err := LoadConfig(bad, false); err == nil {
		t.Fatalf("expected webhook_url validation error")
	}
}

func TestLoadConfigChunkLimitHeadroom(t *testing.T) {
	bad := writeConfig(t, `
bot:
  token: "123:abc"
content:
  chunk_limit: 4090
database:
  url: "postgres://localhost/course"
redis:
  url: "localhost:6379"
`)
	if _, err := LoadConfig(bad, false); err == nil {
		t.Fatalf("expected chunk_limit headroom error")
	}
}

func TestLoadConfigDevFlag(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML), true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Runtime.Dev {
		t.Fatalf("dev flag not carried")
	}
}
