package ai

import (
	"testing"
)

func TestFilePreferencesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo := NewFilePreferences(dir)

	// Missing file yields defaults.
	prefs, err := repo.Load()
	if err != nil {
		t.Fatalf("Expected no error loading missing preferences, got %v", err)
	}
	if prefs.Preferred != "" {
		t.Errorf("Expected empty preferred provider, got %s", prefs.Preferred)
	}
	if !prefs.IsEnabled("gemini") {
		t.Error("Expected unknown providers to default to enabled")
	}

	prefs.Preferred = "groq"
	prefs.Enabled = map[string]bool{"openrouter": false}
	if err := repo.Save(prefs); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}

	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}
	if loaded.Preferred != "groq" {
		t.Errorf("Expected preferred 'groq', got %s", loaded.Preferred)
	}
	if loaded.IsEnabled("openrouter") {
		t.Error("Expected openrouter to stay disabled after round trip")
	}
	if !loaded.IsEnabled("together") {
		t.Error("Expected unmentioned provider to stay enabled")
	}
}
