// Package logger provides structured logging for Keyline.
package logger

import (
	"fmt"
	"log/slog"
	"strconv"
)

// DefaultClipLen is the longest string attribute logged verbatim.
// Stored values and raw wire buffers are arbitrary client data and can
// reach the full read buffer size, so anything longer is clipped.
const DefaultClipLen = 128

// clipAttr clips oversized string attributes. Groups are walked
// recursively so nested attributes are clipped too.
func clipAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		s := a.Value.String()
		if len(s) > DefaultClipLen {
			return slog.String(a.Key, ClipString(s, DefaultClipLen))
		}
		return a
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = clipAttr(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// ClipString truncates value to max bytes and appends the number of
// bytes dropped. Values at or under the limit are returned verbatim.
// A max of zero or less falls back to DefaultClipLen.
func ClipString(value string, max int) string {
	if max <= 0 {
		max = DefaultClipLen
	}
	if len(value) <= max {
		return value
	}
	return value[:max] + fmt.Sprintf("...(+%d bytes)", len(value)-max)
}

// ClipBytes renders a raw buffer as a quoted ASCII preview suitable
// for logging wire data: control bytes appear escaped, and the result
// is clipped to max bytes. Use for frame and reply previews.
func ClipBytes(buf []byte, max int) string {
	return ClipString(strconv.QuoteToASCII(string(buf)), max)
}
