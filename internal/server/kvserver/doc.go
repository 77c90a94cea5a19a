// Package kvserver implements the keyline wire server.
//
// The server accepts TCP and Unix socket connections and runs a
// command loop on each: a single read carries one whole command, the
// decoded tokens are dispatched through the key-value service, and
// the reply bytes are written back on the same connection. There is
// no cross-read buffering; a frame that does not fit in one read is
// handled as the malformed pieces it arrives in.
//
// Connections can be capped in total number and rate limited per
// client IP. Both limits reject at accept time by closing the
// connection before a session starts.
package kvserver
