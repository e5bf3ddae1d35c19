// Package config loads the server configuration from a YAML file, creating a
// default file on first run.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AnthropicConfig tunes the upstream text-understanding service connection.
type AnthropicConfig struct {
	// BaseURL overrides the API endpoint, e.g. for a proxy. Empty means the
	// public API.
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Model overrides the model identifier. Empty means the built-in default.
	Model string `yaml:"model" json:"model"`
	// TimeoutSeconds bounds each upstream call.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// DataDir holds the persisted settings blob.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// LogFile, when set, receives rotated log output in addition to stderr.
	LogFile string `yaml:"log_file" json:"log_file"`

	Anthropic AnthropicConfig `yaml:"anthropic" json:"anthropic"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:  "127.0.0.1:8090",
		DataDir: "data",
		Anthropic: AnthropicConfig{
			TimeoutSeconds: 30,
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8090"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Anthropic.TimeoutSeconds <= 0 {
		c.Anthropic.TimeoutSeconds = 30
	}
}

// Load loads configuration from the given YAML path. A missing file is created
// with defaults; an unreadable or unparsable file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically via a temp file + rename, with
// 0600 permissions since the file may sit next to credential material.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".fixturecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
