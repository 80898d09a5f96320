package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Keyboard.Octaves != 9 || !cfg.Keyboard.ReadOnly {
		t.Fatalf("keyboard = %+v, want 9 octaves read-only", cfg.Keyboard)
	}
	if cfg.Delay() != 500*time.Millisecond {
		t.Fatalf("delay = %v, want 500ms", cfg.Delay())
	}
}

func TestSaveLoadKeepsSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.Keyboard.Octaves = 3
	cfg.Keyboard.Signs = true
	cfg.UI.LastScript = "demo.json"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Keyboard.Octaves != 3 || !got.Keyboard.Signs || got.UI.LastScript != "demo.json" {
		t.Fatalf("loaded = %+v", got)
	}
}

func TestLoadClampsOctavesAndKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"keyboard":{"octaves":40}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Keyboard.Octaves != 9 {
		t.Fatalf("octaves = %d, want clamped 9", cfg.Keyboard.Octaves)
	}
	if cfg.Playback.DelayMS != 500 {
		t.Fatalf("delay = %d, want default 500", cfg.Playback.DelayMS)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{`), 0644)
	if _, err := LoadFrom(path); err == nil {
		t.Fatalf("expected error for truncated json")
	}
}
