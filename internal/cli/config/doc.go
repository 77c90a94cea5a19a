// Package config defines the keyline-cli configuration.
//
// The CLI reads ~/.keyline/cli.yaml for per-user defaults (server
// address, admin address, output format, command timeout). Values from
// the file are overridden per invocation by KEYLINE_* environment
// variables and flags, in that order; that layering lives in the
// command package, not here.
package config
