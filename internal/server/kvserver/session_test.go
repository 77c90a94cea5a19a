package kvserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/keyline-io/keyline/internal/core/service"
	"github.com/keyline-io/keyline/internal/storage/memory"
	"github.com/keyline-io/keyline/internal/telemetry/metric"
)

func newTestServer(t *testing.T, cfg *Config) *Server {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { store.Close() })
	svc := service.NewKeyValService(store)
	return New(cfg, svc, nil, metric.NewRegistry())
}

// startSession wires a net.Pipe client to a serve loop and returns the
// client side plus a channel closed when the loop exits. Pipe writes
// block until the loop consumes them, so frame boundaries in these
// tests are exact.
func startSession(t *testing.T, srv *Server) (net.Conn, chan struct{}) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })
	done := make(chan struct{})
	go func() {
		srv.serve(context.Background(), newSession(server, srv.cfg.ReadBufferBytes))
		close(done)
	}()
	return client, done
}

func roundTrip(t *testing.T, conn net.Conn, req string) string {
	t.Helper()
	if _, err := conn.Write([]byte(req)); err != nil {
		t.Fatalf("Write(%q) error = %v", req, err)
	}
	buf := make([]byte, 256)
	conn.SetReadDeadline(time.Now().Add(time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("Read after %q error = %v", req, err)
	}
	return string(buf[:n])
}

func TestNewSession(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sess := newSession(server, 0)
	if sess.id == "" {
		t.Error("session id should not be empty")
	}
	if len(sess.buf) != DefaultConfig().ReadBufferBytes {
		t.Errorf("buf size = %d, want default %d", len(sess.buf), DefaultConfig().ReadBufferBytes)
	}
	if sess.bw == nil {
		t.Error("bufio.Writer not initialized")
	}

	other := newSession(client, 64)
	if len(other.buf) != 64 {
		t.Errorf("buf size = %d, want 64", len(other.buf))
	}
	if other.id == sess.id {
		t.Error("session ids should be unique")
	}

	if err := sess.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Errorf("double Close() error = %v", err)
	}
}

func TestRemoteHost_Pipe(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	if got := remoteHost(server); got != "" {
		t.Errorf("remoteHost(pipe) = %q, want empty", got)
	}
}

func TestServe_Ping(t *testing.T) {
	srv := newTestServer(t, nil)
	client, _ := startSession(t, srv)

	if got := roundTrip(t, client, "*1\r\n$4\r\nping\r\n"); got != "+PONG\r\n" {
		t.Errorf("array ping reply = %q, want %q", got, "+PONG\r\n")
	}
	if got := roundTrip(t, client, "$4\r\nping\r\n"); got != "+PONG\r\n" {
		t.Errorf("bulk ping reply = %q, want %q", got, "+PONG\r\n")
	}
}

func TestServe_Echo(t *testing.T) {
	srv := newTestServer(t, nil)
	client, _ := startSession(t, srv)

	if got := roundTrip(t, client, "*2\r\n$4\r\necho\r\n$5\r\nhello\r\n"); got != "+hello\r\n" {
		t.Errorf("echo reply = %q, want %q", got, "+hello\r\n")
	}
	if got := roundTrip(t, client, "*3\r\n$4\r\necho\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"); got != "+foobar\r\n" {
		t.Errorf("multi-arg echo reply = %q, want %q", got, "+foobar\r\n")
	}
}

func TestServe_SetGet(t *testing.T) {
	srv := newTestServer(t, nil)
	client, _ := startSession(t, srv)

	if got := roundTrip(t, client, "*3\r\n$3\r\nset\r\n$4\r\nname\r\n$7\r\nkeyline\r\n"); got != "+OK\r\n" {
		t.Errorf("set reply = %q, want %q", got, "+OK\r\n")
	}
	if got := roundTrip(t, client, "*2\r\n$3\r\nget\r\n$4\r\nname\r\n"); got != "+keyline\r\n" {
		t.Errorf("get reply = %q, want %q", got, "+keyline\r\n")
	}
	if got := roundTrip(t, client, "*2\r\n$3\r\nget\r\n$7\r\nmissing\r\n"); got != "$-1\r\n" {
		t.Errorf("missing key reply = %q, want %q", got, "$-1\r\n")
	}
}

func TestServe_SetWithExpiry(t *testing.T) {
	srv := newTestServer(t, nil)
	client, _ := startSession(t, srv)

	set := "*5\r\n$3\r\nset\r\n$1\r\nk\r\n$1\r\nv\r\n$2\r\npx\r\n$2\r\n50\r\n"
	if got := roundTrip(t, client, set); got != "+OK\r\n" {
		t.Fatalf("set px reply = %q, want %q", got, "+OK\r\n")
	}
	if got := roundTrip(t, client, "*2\r\n$3\r\nget\r\n$1\r\nk\r\n"); got != "+v\r\n" {
		t.Errorf("get before expiry = %q, want %q", got, "+v\r\n")
	}

	time.Sleep(80 * time.Millisecond)
	if got := roundTrip(t, client, "*2\r\n$3\r\nget\r\n$1\r\nk\r\n"); got != "$-1\r\n" {
		t.Errorf("get after expiry = %q, want %q", got, "$-1\r\n")
	}
}

func TestServe_UnknownCommand(t *testing.T) {
	srv := newTestServer(t, nil)
	client, _ := startSession(t, srv)

	if got := roundTrip(t, client, "*2\r\n$4\r\nnope\r\n$3\r\narg\r\n"); got != "+\r\n" {
		t.Errorf("unknown command reply = %q, want %q", got, "+\r\n")
	}
}

func TestServe_InvalidSetLeavesStoreUntouched(t *testing.T) {
	srv := newTestServer(t, nil)
	client, _ := startSession(t, srv)

	// set with a missing value draws the empty reply and must not
	// create the key.
	if got := roundTrip(t, client, "*2\r\n$3\r\nset\r\n$1\r\nk\r\n"); got != "+\r\n" {
		t.Errorf("invalid set reply = %q, want %q", got, "+\r\n")
	}
	if got := roundTrip(t, client, "*2\r\n$3\r\nget\r\n$1\r\nk\r\n"); got != "$-1\r\n" {
		t.Errorf("get after invalid set = %q, want %q", got, "$-1\r\n")
	}
}

func TestServe_SilentInputs(t *testing.T) {
	srv := newTestServer(t, nil)
	client, _ := startSession(t, srv)

	// None of these draw a reply. The ping afterwards proves each one
	// was read and dropped without closing the session.
	silent := []string{
		"not a frame",
		"*1\r\n$4\r\nquit\r\n",
		"+123\r\n",
		"*0\r\n",
	}
	for _, in := range silent {
		if _, err := client.Write([]byte(in)); err != nil {
			t.Fatalf("Write(%q) error = %v", in, err)
		}
	}
	if got := roundTrip(t, client, "*1\r\n$4\r\nping\r\n"); got != "+PONG\r\n" {
		t.Errorf("reply after silent inputs = %q, want %q", got, "+PONG\r\n")
	}
}

func TestServe_OversizedFrameSplitsAcrossReads(t *testing.T) {
	srv := newTestServer(t, &Config{ReadBufferBytes: 16})
	client, _ := startSession(t, srv)

	// 24 bytes against a 16 byte buffer: the frame arrives as two
	// reads and neither piece parses. Both are dropped silently and
	// the session stays usable.
	payload := "*2\r\n$4\r\necho\r\n$4\r\nwide\r\n"
	if _, err := client.Write([]byte(payload)); err != nil {
		t.Fatalf("Write error = %v", err)
	}
	if got := roundTrip(t, client, "*1\r\n$4\r\nping\r\n"); got != "+PONG\r\n" {
		t.Errorf("reply after oversized frame = %q, want %q", got, "+PONG\r\n")
	}
}

func TestServe_ClientCloseEndsSession(t *testing.T) {
	srv := newTestServer(t, nil)
	client, done := startSession(t, srv)

	if got := roundTrip(t, client, "*1\r\n$4\r\nping\r\n"); got != "+PONG\r\n" {
		t.Fatalf("ping reply = %q, want %q", got, "+PONG\r\n")
	}
	client.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("serve loop did not exit after client close")
	}
}

func TestServe_ReadTimeoutEndsSession(t *testing.T) {
	srv := newTestServer(t, &Config{ReadBufferBytes: 64, ReadTimeout: 50 * time.Millisecond})
	_, done := startSession(t, srv)

	// No bytes are ever sent; the deadline ends the idle session.
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("serve loop did not exit after read timeout")
	}
}
