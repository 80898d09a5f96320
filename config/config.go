package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go-pianola/keyboard"
)

// PlaybackConfig holds defaults for scripted playback
type PlaybackConfig struct {
	DelayMS int `json:"delayMs,omitempty"` // step interval for groups without one
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette    string `json:"palette,omitempty"` // path to a GIMP .gpl palette
	LastScript string `json:"lastScript,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Keyboard keyboard.Options `json:"keyboard"`
	Playback PlaybackConfig   `json:"playback,omitempty"`
	UI       UIConfig         `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Keyboard: keyboard.DefaultOptions(),
		Playback: PlaybackConfig{
			DelayMS: 500,
		},
	}
}

// Delay returns the default step interval
func (c *Config) Delay() time.Duration {
	return time.Duration(c.Playback.DelayMS) * time.Millisecond
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-pianola"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, or returns defaults if it does not exist.
// Fields missing from the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Keyboard.Octaves = keyboard.ClampOctaves(cfg.Keyboard.Octaves)

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
