package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model.InputWidth != 320 || cfg.Model.InputHeight != 320 {
		t.Errorf("Expected 320x320 input, got %dx%d", cfg.Model.InputWidth, cfg.Model.InputHeight)
	}
	if cfg.Model.HeatmapWidth != 160 || cfg.Model.HeatmapHeight != 160 {
		t.Errorf("Expected 160x160 heatmaps, got %dx%d", cfg.Model.HeatmapWidth, cfg.Model.HeatmapHeight)
	}
	if len(cfg.Model.Landmarks) != 5 || cfg.Model.Landmarks[0] != "L1" || cfg.Model.Landmarks[4] != "L5" {
		t.Errorf("Unexpected landmark set: %v", cfg.Model.Landmarks)
	}
	if cfg.Model.DecodeMethod != "weighted" || cfg.Model.DecodeThreshold != 0.5 {
		t.Errorf("Unexpected decode defaults: %s %v", cfg.Model.DecodeMethod, cfg.Model.DecodeThreshold)
	}
	if cfg.Server.ListenAddr != ":8000" {
		t.Errorf("Expected listen address :8000, got %s", cfg.Server.ListenAddr)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got error: %v", err)
	}
	if cfg.Model.InputWidth != 320 {
		t.Errorf("Expected default input width 320, got %d", cfg.Model.InputWidth)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Model.DecodeMethod = "argmax"
	cfg.Model.Landmarks = []string{"L3"}
	cfg.Server.ListenAddr = ":9999"
	cfg.Server.ReleaseMode = true

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if loaded.Model.DecodeMethod != "argmax" {
		t.Errorf("Expected decode method argmax, got %s", loaded.Model.DecodeMethod)
	}
	if len(loaded.Model.Landmarks) != 1 || loaded.Model.Landmarks[0] != "L3" {
		t.Errorf("Unexpected landmarks: %v", loaded.Model.Landmarks)
	}
	if loaded.Server.ListenAddr != ":9999" || !loaded.Server.ReleaseMode {
		t.Errorf("Unexpected server settings: %+v", loaded.Server)
	}
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "model:\n  decodeThreshold: 0.7\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Model.DecodeThreshold != 0.7 {
		t.Errorf("Expected overridden threshold 0.7, got %v", cfg.Model.DecodeThreshold)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Model.InputWidth != 320 || cfg.Server.ListenAddr != ":8000" {
		t.Errorf("Defaults not preserved: %+v", cfg)
	}
}
