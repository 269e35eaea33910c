package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if !cfg.Browser.Headless {
		t.Error("default browser should be headless")
	}
	if cfg.Capture.OperationMode != "auto" {
		t.Errorf("default operation mode should be auto, got %s", cfg.Capture.OperationMode)
	}
	if cfg.SettleDelay() != 10*time.Second {
		t.Errorf("default settle delay should be 10s, got %s", cfg.SettleDelay())
	}
	if cfg.ChatDebounce() != 300*time.Millisecond {
		t.Errorf("default chat debounce should be 300ms, got %s", cfg.ChatDebounce())
	}
	if cfg.ObserverPoll() != 100*time.Millisecond {
		t.Errorf("default observer poll should be 100ms, got %s", cfg.ObserverPoll())
	}
	if cfg.MaxWaitingTime() != 30*time.Minute {
		t.Errorf("default max waiting time should be 30m, got %s", cfg.MaxWaitingTime())
	}
	if cfg.Storage.Database == "" || cfg.Storage.OutputDir == "" {
		t.Error("storage paths should have defaults")
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Capture.SettleDelaySeconds != 10 {
		t.Errorf("expected default settle delay, got %d", cfg.Capture.SettleDelaySeconds)
	}
}

func TestLoadOverridesSelectedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
capture:
  operation_mode: manual
  chat_debounce_ms: 150
bot:
  name: Note Taker
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Capture.OperationMode != "manual" {
		t.Errorf("operation mode not overridden: %s", cfg.Capture.OperationMode)
	}
	if cfg.ChatDebounce() != 150*time.Millisecond {
		t.Errorf("chat debounce not overridden: %s", cfg.ChatDebounce())
	}
	if cfg.Bot.Name != "Note Taker" {
		t.Errorf("bot name not overridden: %s", cfg.Bot.Name)
	}
	// Untouched fields keep defaults
	if cfg.Capture.SettleDelaySeconds != 10 {
		t.Errorf("settle delay should keep default, got %d", cfg.Capture.SettleDelaySeconds)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("capture: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
