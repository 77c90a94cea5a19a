// Package main provides the entry point for keyline-cli.
//
// The CLI tool provides command-line access to a Keyline server for:
//
//   - Key-value operations (ping, echo, set, get)
//   - System administration (status, health, purge)
//   - Interactive sessions against a live server
//   - Load benchmarking
//
// Usage:
//
//	keyline-cli [command] [flags]
//	keyline-cli set user:1 alice --px 60000
//	keyline-cli connect localhost:6379
//
// The CLI supports both single-command mode and interactive REPL mode.
package main
