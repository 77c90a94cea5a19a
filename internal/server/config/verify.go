// Package config defines the server configuration structure.
package config

import (
	"errors"
	"net"
	"strings"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyLimits(&cfg.Limits); err != nil {
		return err
	}
	if err := verifyAdmin(&cfg.Admin); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Addr == "" && cfg.UnixSocket == "" {
		return errors.New("server.addr or server.unix_socket is required")
	}
	if cfg.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
			return errors.New("server.addr is not a host:port address: " + err.Error())
		}
	}
	if cfg.ReadBufferBytes <= 0 {
		return errors.New("server.read_buffer_bytes must be positive")
	}
	if cfg.MaxConns < 0 {
		return errors.New("server.max_conns must not be negative")
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	return nil
}

func verifyLimits(cfg *LimitsSection) error {
	if cfg.PerIPRate < 0 {
		return errors.New("limits.per_ip_rate must not be negative")
	}
	return nil
}

func verifyAdmin(cfg *AdminSection) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Addr == "" {
		return errors.New("admin.addr is required when admin.enabled is true")
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return errors.New("admin.addr is not a host:port address: " + err.Error())
	}
	if cfg.RateLimit < 0 {
		return errors.New("admin.rate_limit must not be negative")
	}
	for _, entry := range cfg.AllowList {
		if strings.Contains(entry, "/") {
			if _, _, err := net.ParseCIDR(entry); err != nil {
				return errors.New("admin.allow_list entry is not a CIDR range: " + entry)
			}
		} else if net.ParseIP(entry) == nil {
			return errors.New("admin.allow_list entry is not an IP address: " + entry)
		}
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch cfg.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.New("log.level must be one of debug, info, warn, error")
	}
	switch cfg.Format {
	case "", "json", "text":
	default:
		return errors.New("log.format must be json or text")
	}
	return nil
}
