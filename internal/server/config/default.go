// Package config defines the server configuration structure.
package config

// Default configuration values.
const (
	DefaultAddr            = "localhost:6379"
	DefaultReadBufferBytes = 4096
	DefaultAdminAddr       = "127.0.0.1:9121"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:            DefaultAddr,
			ReadBufferBytes: DefaultReadBufferBytes,
		},
		Admin: AdminSection{
			Enabled: true,
			Addr:    DefaultAdminAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
