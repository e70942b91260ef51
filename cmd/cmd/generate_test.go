package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEventFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing event file: %v", err)
	}
	return path
}

func TestLoadNormalizedEvent(t *testing.T) {
	path := writeEventFile(t, `{
		"id": "ev-1",
		"name": "Festival de Jazz",
		"date": "2026-09-12 20:00:00",
		"location": "Teatro Santa Isabel",
		"category": "show",
		"source_urls": ["https://www.sympla.com.br/jazz"]
	}`)

	event, err := loadNormalizedEvent(path)
	if err != nil {
		t.Fatalf("Expected event to load, got %v", err)
	}
	if event.Name != "Festival de Jazz" {
		t.Errorf("Unexpected name %s", event.Name)
	}
	if event.Date != "2026-09-12 20:00:00" {
		t.Errorf("Unexpected date %s", event.Date)
	}
	if len(event.SourceURLs) != 1 {
		t.Errorf("Expected one source URL, got %d", len(event.SourceURLs))
	}
}

func TestLoadNormalizedEventRejectsIncompleteEvent(t *testing.T) {
	path := writeEventFile(t, `{"name": "Sem data"}`)

	if _, err := loadNormalizedEvent(path); err == nil {
		t.Error("Expected an error for an event without a date")
	}
}

func TestLoadNormalizedEventRejectsMalformedJSON(t *testing.T) {
	path := writeEventFile(t, `{"name": "quebrado"`)

	if _, err := loadNormalizedEvent(path); err == nil {
		t.Error("Expected an error for malformed JSON")
	}
}

func TestLoadNormalizedEventMissingFile(t *testing.T) {
	if _, err := loadNormalizedEvent(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
