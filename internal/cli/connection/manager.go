// Package connection provides server connections for the Keyline CLI.
package connection

import "fmt"

// Connection describes a server a CLI session is bound to.
type Connection struct {
	Name   string
	Server string
	Admin  string
}

// Manager tracks the current connection of an interactive session.
type Manager struct {
	current *Connection
}

// NewManager creates a new connection manager.
func NewManager() *Manager {
	return &Manager{}
}

// Connect records conn as the current connection.
func (m *Manager) Connect(conn *Connection) error {
	if conn == nil || conn.Server == "" {
		return fmt.Errorf("connection requires a server address")
	}
	m.current = conn
	return nil
}

// Disconnect clears the current connection.
func (m *Manager) Disconnect() {
	m.current = nil
}

// Current returns the current connection, or nil.
func (m *Manager) Current() *Connection {
	return m.current
}

// IsConnected reports whether a current connection is set.
func (m *Manager) IsConnected() bool {
	return m.current != nil
}
