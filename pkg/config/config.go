// Package config provides configuration loading and management for spinemark.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Model parameters describe the inference model's tensor contract
	Model struct {
		// InputWidth and InputHeight are the fixed model input resolution
		InputWidth  int `yaml:"inputWidth"`
		InputHeight int `yaml:"inputHeight"`

		// HeatmapWidth and HeatmapHeight are the model output grid resolution
		HeatmapWidth  int `yaml:"heatmapWidth"`
		HeatmapHeight int `yaml:"heatmapHeight"`

		// Landmarks is the fixed, ordered landmark name set, aligned
		// index-for-index with the model's output channels
		Landmarks []string `yaml:"landmarks"`

		// DecodeMethod selects heatmap decoding: "argmax" or "weighted"
		DecodeMethod string `yaml:"decodeMethod"`

		// DecodeThreshold is the mask threshold fraction used by weighted decoding
		DecodeThreshold float64 `yaml:"decodeThreshold"`
	} `yaml:"model"`

	// Server parameters for the annotation backend
	Server struct {
		// ListenAddr is the address the HTTP server binds to
		ListenAddr string `yaml:"listenAddr"`

		// ReleaseMode disables gin's debug output when true
		ReleaseMode bool `yaml:"releaseMode"`
	} `yaml:"server"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default model parameters matching the shipped lumbar spine model
	cfg.Model.InputWidth = 320
	cfg.Model.InputHeight = 320
	cfg.Model.HeatmapWidth = 160
	cfg.Model.HeatmapHeight = 160
	cfg.Model.Landmarks = []string{"L1", "L2", "L3", "L4", "L5"}
	cfg.Model.DecodeMethod = "weighted"
	cfg.Model.DecodeThreshold = 0.5

	// Set default server parameters
	cfg.Server.ListenAddr = ":8000"
	cfg.Server.ReleaseMode = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
