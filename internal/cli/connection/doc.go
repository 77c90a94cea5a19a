// Package connection provides server connections for the Keyline CLI.
//
// Two client types cover the two server surfaces:
//
//   - wire.go: WireClient speaks the line protocol to the data port,
//     over TCP or a Unix domain socket
//   - http.go: HTTPClient talks to the admin HTTP endpoint
//
// manager.go tracks the connection a REPL session is bound to.
package connection
