// Package command defines the keyline-cli commands.
//
// Commands are built with urfave/cli/v2:
//
//   - root.go: the app, global flags, and config/flag layering
//   - kv.go: one-shot wire commands (ping, echo, set, get)
//   - system.go: admin commands against the HTTP surface
//   - connect.go: the interactive session
//   - bench.go: the wire load generator
//
// Every command follows the same pattern: merge flags over the CLI
// config file, open a client, run, render through the output package.
package command
