// Package repl provides the interactive mode of the Keyline CLI.
//
// The loop reads one command per line, sends it over an established
// wire connection and prints the reply:
//
//   - repl.go: the read-eval-print loop and reply rendering
//   - completer.go: prefix completion for command names
//   - history.go: command history persisted under ~/.keyline
//
// Nil replies print as "(nil)", empty replies as "(empty)", and
// commands the server drops silently as "(no reply)".
package repl
