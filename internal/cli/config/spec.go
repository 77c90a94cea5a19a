package config

import "time"

// CLIConfig is the configuration for keyline-cli, stored at
// ~/.keyline/cli.yaml. Flags and KEYLINE_* environment variables
// override it per invocation; the file only changes defaults.
type CLIConfig struct {
	// Server is the wire server address, host:port or a unix
	// socket path.
	Server string `koanf:"server" yaml:"server"`

	// Admin is the admin HTTP address for system commands.
	Admin string `koanf:"admin" yaml:"admin"`

	// Output is the default output format: table, json, or yaml.
	Output string `koanf:"output" yaml:"output"`

	// Timeout bounds each wire command round trip.
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
}

// Default returns the default CLI configuration, matching the server
// defaults so a fresh install talks to a local keyline-server without
// a config file.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  "localhost:6379",
		Admin:   "127.0.0.1:9121",
		Output:  "table",
		Timeout: 5 * time.Second,
	}
}
