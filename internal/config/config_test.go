package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" || cfg.DefaultView != "week" {
		t.Errorf("default cfg = %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config was not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Listen = "0.0.0.0:9090"
	cfg.SeedDate = "2025-03-05"
	cfg.Subscriptions = []SubscriptionConfig{
		{URL: "https://example.com/feed.ics", ID: "team", Name: "Team"},
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Listen != "0.0.0.0:9090" || got.SeedDate != "2025-03-05" {
		t.Errorf("round-tripped cfg = %+v", got)
	}
	if len(got.Subscriptions) != 1 || got.Subscriptions[0].Color != "blue" {
		t.Errorf("subscription color not defaulted: %+v", got.Subscriptions)
	}
}

func TestNormalize(t *testing.T) {
	cfg := &Config{DefaultView: "agenda", GridStartHour: 31, PixelsPerHour: -1}
	cfg.Normalize()

	if cfg.DefaultView != "week" {
		t.Errorf("DefaultView = %q, want week", cfg.DefaultView)
	}
	if cfg.GridStartHour != 8 || cfg.PixelsPerHour != 80 {
		t.Errorf("geometry defaults not applied: pph=%v gsh=%v", cfg.PixelsPerHour, cfg.GridStartHour)
	}
	if cfg.RefreshCron == "" || cfg.Subscriptions == nil {
		t.Errorf("refresh/subscriptions not normalized: %+v", cfg)
	}
}
