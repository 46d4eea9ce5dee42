//go:build !integration

package i18n

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestTranslatorResolvesKeys(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.yaml": &fstest.MapFile{Data: []byte(
			"greeting: \"hello\"\npaywall: \"day %d is locked\"\n",
		)},
	}
	tr, err := NewTranslator(fsys, "en")
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}

	if got := tr.T("greeting"); got != "hello" {
		t.Fatalf("greeting = %q", got)
	}
	if got := tr.T("paywall", 3); got != "day 3 is locked" {
		t.Fatalf("paywall = %q", got)
	}
	// Unknown keys surface as themselves instead of failing.
	if got := tr.T("missing_key"); got != "missing_key" {
		t.Fatalf("missing key = %q", got)
	}
}

func TestTranslatorMissingLocale(t *testing.T) {
	if _, err := NewTranslator(fstest.MapFS{}, "xx"); err == nil {
		t.Fatalf("expected error for missing locale file")
	}
}

func TestEmbeddedKhmerLocale(t *testing.T) {
	tr, err := NewTranslator(LocalesFS, "km")
	if err != nil {
		t.Fatalf("embedded km locale: %v", err)
	}

	for _, key := range []string{
		"start_welcome", "pricing", "help", "paywall", "lesson_preparing",
		"part_indicator", "part_send_failed", "apology", "rate_limited",
		"progress_header", "progress_day_done", "progress_day_pending",
		"progress_empty", "join_intent_keyword", "join_intent_reply",
	} {
		if got := tr.T(key); got == key || strings.TrimSpace(got) == "" {
			t.Fatalf("key %q missing from km locale", key)
		}
	}

	if got := tr.T("part_indicator", 2, 5); !strings.Contains(got, "2/5") {
		t.Fatalf("part indicator not formatted: %q", got)
	}
}
