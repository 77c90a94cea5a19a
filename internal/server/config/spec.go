// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for keyline-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Limits LimitsSection `koanf:"limits"`
	Admin  AdminSection  `koanf:"admin"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures the client-facing listener and per-session
// behavior.
type ServerSection struct {
	// Addr is the TCP bind address (e.g., "localhost:6379").
	Addr string `koanf:"addr"`

	// UnixSocket is an optional Unix domain socket path serving the
	// same protocol. Empty disables it.
	UnixSocket string `koanf:"unix_socket"`

	// ReadBufferBytes is the size of the per-command read buffer. One
	// read of at most this many bytes carries one whole command.
	ReadBufferBytes int `koanf:"read_buffer_bytes"`

	// MaxConns caps concurrently served connections. Zero means no cap.
	MaxConns int `koanf:"max_conns"`

	// ReadTimeout bounds each command read. Zero disables the deadline.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds each reply write. Zero disables the deadline.
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// LimitsSection configures client throttling.
type LimitsSection struct {
	// PerIPRate is the number of new connections accepted per second
	// from one client IP. Zero disables limiting.
	PerIPRate int `koanf:"per_ip_rate"`
}

// AdminSection configures the admin HTTP endpoint serving health,
// stats and metrics.
type AdminSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`

	// AllowList restricts admin access to the listed IPs and CIDR
	// ranges. Empty means no restriction.
	AllowList []string `koanf:"allow_list"`

	// RateLimit caps admin requests per second per client IP. Zero
	// disables the limit.
	RateLimit int `koanf:"rate_limit"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
