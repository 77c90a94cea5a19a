// Package connection provides server connections for the Keyline CLI.
package connection

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/keyline-io/keyline/internal/protocol"
)

// DefaultTimeout bounds each wire round trip when no explicit timeout
// is configured.
const DefaultTimeout = 5 * time.Second

// WireClient speaks the server's line protocol. It holds one
// connection, dialed lazily on the first command.
type WireClient struct {
	network string
	addr    string

	mu      sync.Mutex
	timeout time.Duration
	conn    net.Conn
	reader  *bufio.Reader
}

// NewWireClient creates a client for the given server address. An
// address containing a path separator is dialed as a Unix domain
// socket, anything else as host:port TCP.
func NewWireClient(server string) *WireClient {
	network := "tcp"
	if strings.Contains(server, "/") {
		network = "unix"
	}
	return &WireClient{
		network: network,
		addr:    server,
		timeout: DefaultTimeout,
	}
}

// SetTimeout replaces the per-round-trip deadline. Non-positive
// values are ignored.
func (c *WireClient) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

// Addr returns the server address this client dials.
func (c *WireClient) Addr() string {
	return c.addr
}

// Connect dials the server. Do connects on demand, so calling Connect
// first is only needed to surface dial errors early.
func (c *WireClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}
	return c.dial()
}

func (c *WireClient) dial() error {
	conn, err := net.DialTimeout(c.network, c.addr, c.timeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.addr, err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Close closes the connection. A client that never connected closes
// cleanly.
func (c *WireClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// Do sends one command and reads its reply. Commands the server drops
// without answering surface as a timeout error once the read deadline
// passes; the connection stays usable afterwards.
func (c *WireClient) Do(args ...string) (protocol.Reply, error) {
	if len(args) == 0 {
		return protocol.Reply{}, fmt.Errorf("empty command")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.dial(); err != nil {
			return protocol.Reply{}, err
		}
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if _, err := c.conn.Write(protocol.EncodeCommand(args...)); err != nil {
		c.reset()
		return protocol.Reply{}, fmt.Errorf("write command: %w", err)
	}

	// Replies are single CRLF-terminated lines.
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if !IsTimeout(err) {
			c.reset()
		}
		return protocol.Reply{}, fmt.Errorf("read reply: %w", err)
	}

	reply, err := protocol.ParseReply([]byte(line))
	if err != nil {
		return protocol.Reply{}, err
	}
	return reply, nil
}

// Ping sends the liveness command and checks its answer.
func (c *WireClient) Ping() error {
	reply, err := c.Do("ping")
	if err != nil {
		return err
	}
	if reply.Kind != protocol.ReplyText || reply.Text != "PONG" {
		return fmt.Errorf("unexpected ping reply %q", reply.Text)
	}
	return nil
}

// reset drops a connection whose stream state is no longer trusted.
// The next Do dials again.
func (c *WireClient) reset() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = nil
	c.reader = nil
}

// IsTimeout reports whether err is a read or write deadline miss.
// The server answers some inputs with silence, so a timeout on a
// round trip is an expected outcome rather than a broken connection.
func IsTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
