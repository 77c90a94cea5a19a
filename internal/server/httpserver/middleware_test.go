package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/keyline-io/keyline/internal/telemetry/logger"
)

// testLogger records log calls for assertions.
type testLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

func (l *testLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *testLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *testLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *testLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *testLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

func (l *testLogger) With(args ...any) logger.Logger              { return l }
func (l *testLogger) WithContext(ctx context.Context) logger.Logger { return l }

func (l *testLogger) last() (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return logEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

func (l *testLogger) countLevel(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("first"), mw("second"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"first", "second", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRequestID_Generated(t *testing.T) {
	var ctxID, loggerID string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = GetRequestIDFromContext(r.Context())
		loggerID = logger.RequestIDFromContext(r.Context())
	}), RequestID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.HasPrefix(ctxID, "req-") {
		t.Errorf("context request ID = %q, want req- prefix", ctxID)
	}
	if loggerID != ctxID {
		t.Errorf("logger context ID = %q, want %q", loggerID, ctxID)
	}
	if got := rec.Header().Get("X-Request-ID"); got != ctxID {
		t.Errorf("X-Request-ID header = %q, want %q", got, ctxID)
	}
}

func TestRequestID_CallerProvided(t *testing.T) {
	var ctxID string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = GetRequestIDFromContext(r.Context())
	}), RequestID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "custom-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if ctxID != "custom-123" {
		t.Errorf("context request ID = %q, want %q", ctxID, "custom-123")
	}
	if got := rec.Header().Get("X-Request-ID"); got != "custom-123" {
		t.Errorf("X-Request-ID header = %q, want %q", got, "custom-123")
	}
}

func TestRequestID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	h := Chain(okHandler(), RequestID())
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get("X-Request-ID")
		if seen[id] {
			t.Fatalf("duplicate request ID %q", id)
		}
		seen[id] = true
	}
}

func TestRecover(t *testing.T) {
	tl := &testLogger{}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}), RequestID(), Recover(tl))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "KL-SYS-5000" {
		t.Errorf("X-Error-Code = %q, want %q", got, "KL-SYS-5000")
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["code"] != "KL-SYS-5000" {
		t.Errorf("body code = %q, want %q", body["code"], "KL-SYS-5000")
	}

	entry, ok := tl.last()
	if !ok {
		t.Fatal("panic should be logged")
	}
	if entry.level != "error" || entry.msg != "panic recovered" {
		t.Errorf("log entry = %s/%q, want error/%q", entry.level, entry.msg, "panic recovered")
	}
}

func TestRequestLog_Levels(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{http.StatusOK, "info"},
		{http.StatusNotFound, "warn"},
		{http.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		tl := &testLogger{}
		h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}), RequestID(), RequestLog(tl))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		entry, ok := tl.last()
		if !ok {
			t.Fatalf("status %d: request should be logged", tt.status)
		}
		if entry.level != tt.wantLevel {
			t.Errorf("status %d: log level = %q, want %q", tt.status, entry.level, tt.wantLevel)
		}
		if entry.msg != "request completed" {
			t.Errorf("status %d: log msg = %q, want %q", tt.status, entry.msg, "request completed")
		}
	}
}

func TestRequestLog_DefaultStatus(t *testing.T) {
	// A handler that never calls WriteHeader logs 200.
	tl := &testLogger{}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}), RequestID(), RequestLog(tl))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	entry, ok := tl.last()
	if !ok {
		t.Fatal("request should be logged")
	}
	if entry.level != "info" {
		t.Errorf("log level = %q, want %q", entry.level, "info")
	}
}

func TestRateLimit(t *testing.T) {
	h := Chain(okHandler(), RateLimit(1))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want %q", got, "1")
	}
	if got := rec.Header().Get("X-Error-Code"); got != "KL-SYS-4290" {
		t.Errorf("X-Error-Code = %q, want %q", got, "KL-SYS-4290")
	}

	// A different client IP has its own budget.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRateLimit_ZeroDisables(t *testing.T) {
	h := Chain(okHandler(), RateLimit(0))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}
}

func TestNetworkACL(t *testing.T) {
	tests := []struct {
		name       string
		allowList  []string
		remoteAddr string
		xff        string
		wantStatus int
	}{
		{"empty allowlist passes", nil, "203.0.113.7:1", "", http.StatusOK},
		{"single IP match", []string{"127.0.0.1"}, "127.0.0.1:999", "", http.StatusOK},
		{"single IP mismatch", []string{"127.0.0.1"}, "10.1.2.3:999", "", http.StatusForbidden},
		{"CIDR match", []string{"10.0.0.0/8"}, "10.1.2.3:80", "", http.StatusOK},
		{"CIDR mismatch", []string{"10.0.0.0/8"}, "192.168.1.1:80", "", http.StatusForbidden},
		{"forwarded IP wins", []string{"10.0.0.0/8"}, "127.0.0.1:80", "10.9.9.9", http.StatusOK},
		{"invalid entries skipped", []string{"not-an-ip", "300.1.1.1/33", "127.0.0.1"}, "127.0.0.1:1", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := &testLogger{}
			h := Chain(okHandler(), NetworkACL(&NetworkACLConfig{
				AllowList: tt.allowList,
				Logger:    tl,
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusForbidden {
				if entry, ok := tl.last(); !ok || entry.msg != "request denied by network ACL" {
					t.Error("denied request should be logged")
				}
			}
		})
	}
}

func TestNetworkACL_LogsInvalidEntries(t *testing.T) {
	tl := &testLogger{}
	NetworkACL(&NetworkACLConfig{
		AllowList: []string{"not-an-ip", "300.1.1.1/33"},
		Logger:    tl,
	})
	if got := tl.countLevel("warn"); got != 2 {
		t.Errorf("warn count = %d, want 2", got)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{"forwarded for first entry", "127.0.0.1:80", "1.2.3.4, 5.6.7.8", "", "1.2.3.4"},
		{"real IP", "127.0.0.1:80", "", "9.9.9.9", "9.9.9.9"},
		{"remote addr", "127.0.0.1:8080", "", "", "127.0.0.1"},
		{"remote addr IPv6", "[::1]:8080", "", "", "::1"},
		{"remote addr without port", "1.1.1.1", "", "", "1.1.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponseWriter_CapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	w.WriteHeader(http.StatusTeapot)
	if w.statusCode != http.StatusTeapot {
		t.Errorf("statusCode = %d, want %d", w.statusCode, http.StatusTeapot)
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("underlying status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
