package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/keyline-io/keyline/internal/infra/confloader"
)

// DefaultConfigPath returns the default CLI config file path,
// ~/.keyline/cli.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".keyline", "cli.yaml")
}

// Load reads the CLI configuration from path. An empty path means
// DefaultConfigPath, and a missing file yields the defaults without
// error. Only the file is consulted here: flag and KEYLINE_* overrides
// are applied per invocation by the command layer, which keeps the
// CLI's flat keys out of the daemon's section-based env namespace.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	loader := confloader.NewLoader()
	if err := loader.LoadFile(path); err != nil {
		return nil, err
	}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the CLI configuration to path, creating the config
// directory with owner-only permissions. The timeout is written in Go
// duration form ("5s") so the file stays hand-editable.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(map[string]any{
		"server":  cfg.Server,
		"admin":   cfg.Admin,
		"output":  cfg.Output,
		"timeout": cfg.Timeout.String(),
	})
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
