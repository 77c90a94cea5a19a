package kvserver

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"
)

func startTestServer(t *testing.T, cfg *Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = &Config{Addr: "127.0.0.1:0", ReadBufferBytes: 4096}
	}
	srv := newTestServer(t, cfg)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached within 2s")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Addr != "localhost:6379" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, "localhost:6379")
	}
	if cfg.UnixSocket != "" {
		t.Errorf("UnixSocket = %q, want empty", cfg.UnixSocket)
	}
	if cfg.ReadBufferBytes != 4096 {
		t.Errorf("ReadBufferBytes = %d, want 4096", cfg.ReadBufferBytes)
	}
	if cfg.MaxConns != 0 {
		t.Errorf("MaxConns = %d, want 0", cfg.MaxConns)
	}
	if cfg.PerIPRate != 0 {
		t.Errorf("PerIPRate = %d, want 0", cfg.PerIPRate)
	}
	if cfg.ReadTimeout != 0 || cfg.WriteTimeout != 0 {
		t.Error("timeouts should be disabled by default")
	}
}

func TestServer_New(t *testing.T) {
	srv := newTestServer(t, nil)
	if srv.cfg == nil {
		t.Fatal("cfg should not be nil")
	}
	if srv.cfg.Addr != DefaultConfig().Addr {
		t.Errorf("Addr = %q, want default %q", srv.cfg.Addr, DefaultConfig().Addr)
	}
	if srv.limiter == nil {
		t.Error("limiter should not be nil")
	}
	if srv.sessions == nil {
		t.Error("session registry should not be nil")
	}
	if srv.sem != nil {
		t.Error("sem should be nil when MaxConns is zero")
	}

	capped := newTestServer(t, &Config{Addr: "127.0.0.1:0", ReadBufferBytes: 64, MaxConns: 3})
	if cap(capped.sem) != 3 {
		t.Errorf("sem capacity = %d, want 3", cap(capped.sem))
	}
}

func TestServer_Start_NoListeners(t *testing.T) {
	srv := newTestServer(t, &Config{ReadBufferBytes: 64})
	if err := srv.Start(context.Background()); err == nil {
		t.Error("Start() with no listeners should fail")
	}
}

func TestServer_Shutdown_NeverStarted(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v, want nil", err)
	}
}

func TestServer_TCPRoundTrip(t *testing.T) {
	srv := startTestServer(t, nil)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial error = %v", err)
	}
	defer conn.Close()

	if got := roundTrip(t, conn, "*3\r\n$3\r\nset\r\n$4\r\nname\r\n$7\r\nkeyline\r\n"); got != "+OK\r\n" {
		t.Errorf("set reply = %q, want %q", got, "+OK\r\n")
	}
	if got := roundTrip(t, conn, "*2\r\n$3\r\nget\r\n$4\r\nname\r\n"); got != "+keyline\r\n" {
		t.Errorf("get reply = %q, want %q", got, "+keyline\r\n")
	}
}

func TestServer_UnixSocketRoundTrip(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "keyline.sock")
	startTestServer(t, &Config{UnixSocket: sock, ReadBufferBytes: 4096})

	conn, err := net.Dial("unix", sock)
	if err != nil {
		t.Fatalf("Dial error = %v", err)
	}
	defer conn.Close()

	if got := roundTrip(t, conn, "*1\r\n$4\r\nping\r\n"); got != "+PONG\r\n" {
		t.Errorf("ping reply = %q, want %q", got, "+PONG\r\n")
	}
}

func TestServer_ShutdownClosesLiveSessions(t *testing.T) {
	srv := startTestServer(t, nil)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial error = %v", err)
	}
	defer conn.Close()
	if got := roundTrip(t, conn, "*1\r\n$4\r\nping\r\n"); got != "+PONG\r\n" {
		t.Fatalf("ping reply = %q, want %q", got, "+PONG\r\n")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Read(make([]byte, 1)); err == nil {
		t.Error("connection should be closed after shutdown")
	}
	if got := srv.ActiveSessions(); got != 0 {
		t.Errorf("ActiveSessions() = %d, want 0", got)
	}
}

func TestServer_MaxConns(t *testing.T) {
	srv := startTestServer(t, &Config{Addr: "127.0.0.1:0", ReadBufferBytes: 4096, MaxConns: 1})

	first, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial error = %v", err)
	}
	defer first.Close()
	if got := roundTrip(t, first, "*1\r\n$4\r\nping\r\n"); got != "+PONG\r\n" {
		t.Fatalf("ping reply = %q, want %q", got, "+PONG\r\n")
	}

	// The only slot is taken; the next connection is closed at accept.
	second, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial error = %v", err)
	}
	defer second.Close()
	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := second.Read(make([]byte, 1)); err == nil {
		t.Error("second connection should be closed at accept")
	}

	// Releasing the slot admits connections again.
	first.Close()
	waitFor(t, func() bool { return srv.ActiveSessions() == 0 })

	third, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial error = %v", err)
	}
	defer third.Close()
	if got := roundTrip(t, third, "*1\r\n$4\r\nping\r\n"); got != "+PONG\r\n" {
		t.Errorf("reply after slot release = %q, want %q", got, "+PONG\r\n")
	}
}

func TestServer_PerIPRateLimit(t *testing.T) {
	srv := startTestServer(t, &Config{Addr: "127.0.0.1:0", ReadBufferBytes: 4096, PerIPRate: 1})

	// Burst of one: the first connection in the burst is admitted,
	// later ones are closed until the limiter refills.
	accepted, rejected := 0, 0
	for i := 0; i < 3; i++ {
		conn, err := net.Dial("tcp", srv.Addr().String())
		if err != nil {
			t.Fatalf("Dial %d error = %v", i, err)
		}
		if probe(conn) {
			accepted++
		} else {
			rejected++
		}
		conn.Close()
	}
	if accepted == 0 {
		t.Error("at least one connection should be admitted")
	}
	if rejected == 0 {
		t.Error("at least one connection should be rate limited")
	}
}

// probe reports whether the connection answers a ping.
func probe(conn net.Conn) bool {
	if _, err := conn.Write([]byte("*1\r\n$4\r\nping\r\n")); err != nil {
		return false
	}
	conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 16)
	n, err := conn.Read(buf)
	return err == nil && string(buf[:n]) == "+PONG\r\n"
}
