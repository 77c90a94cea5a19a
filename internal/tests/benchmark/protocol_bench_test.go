package benchmark

import (
	"testing"

	"github.com/keyline-io/keyline/internal/protocol"
)

// BenchmarkFrameDecode benchmarks decoding of each frame shape.
func BenchmarkFrameDecode(b *testing.B) {
	frames := []struct {
		name string
		raw  []byte
	}{
		{"simple", []byte("+ping\r\n")},
		{"bulk", []byte("$4\r\nping\r\n")},
		{"array", []byte("*3\r\n$3\r\nset\r\n$6\r\nuser:1\r\n$5\r\nalice\r\n")},
		{"array_px", []byte("*5\r\n$3\r\nset\r\n$6\r\nuser:1\r\n$5\r\nalice\r\n$2\r\npx\r\n$5\r\n60000\r\n")},
		{"malformed", []byte("set user:1 alice")},
	}

	for _, f := range frames {
		b.Run(f.name, func(b *testing.B) {
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				frame := protocol.Decode(f.raw)
				if len(frame.Tokens) == 0 {
					b.Fatal("decoded frame without tokens")
				}
			}
		})
	}
}

// BenchmarkReplyEncode benchmarks reply wire encoding.
func BenchmarkReplyEncode(b *testing.B) {
	replies := []struct {
		name  string
		reply protocol.Reply
	}{
		{"text", protocol.TextReply("OK")},
		{"empty", protocol.TextReply("")},
		{"nil", protocol.NilReply()},
	}

	for _, r := range replies {
		b.Run(r.name, func(b *testing.B) {
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if out := r.reply.Encode(); len(out) == 0 {
					b.Fatal("empty encoding")
				}
			}
		})
	}
}

// BenchmarkEncodeCommand benchmarks client-side command encoding.
func BenchmarkEncodeCommand(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if out := protocol.EncodeCommand("set", "user:1", "alice"); len(out) == 0 {
			b.Fatal("empty encoding")
		}
	}
}
