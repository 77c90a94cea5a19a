// Package repl provides the interactive mode of the Keyline CLI.
package repl

import "strings"

// Completer provides command name completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the REPL command set.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"ping", "echo", "set", "get",
			"help", "exit", "quit",
		},
	}
}

// Complete returns the commands matching the given prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Commands returns the full command list.
func (c *Completer) Commands() []string {
	return c.commands
}
