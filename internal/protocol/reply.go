package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadReply is returned when a reply buffer matches no reply encoding.
var ErrBadReply = errors.New("protocol: malformed reply")

// ReplyKind discriminates the reply encodings.
type ReplyKind uint8

const (
	// ReplyNone means nothing is written back for the command.
	ReplyNone ReplyKind = iota
	// ReplyNil is the null bulk string $-1\r\n.
	ReplyNil
	// ReplyText is a simple string +text\r\n.
	ReplyText
)

// String returns the kind name for logs and metric labels.
func (k ReplyKind) String() string {
	switch k {
	case ReplyNil:
		return "nil"
	case ReplyText:
		return "text"
	default:
		return "none"
	}
}

// Reply is the tagged result of one command. The zero value is
// ReplyNone, which writes no bytes at all.
type Reply struct {
	Kind ReplyKind
	Text string
}

// NoReply is the absent reply: the connection stays silent.
func NoReply() Reply { return Reply{Kind: ReplyNone} }

// NilReply encodes as the null bulk string.
func NilReply() Reply { return Reply{Kind: ReplyNil} }

// TextReply encodes text as a simple string. An empty text is legal
// and encodes as "+\r\n".
func TextReply(text string) Reply {
	return Reply{Kind: ReplyText, Text: text}
}

// IsNil reports whether the reply is the null bulk string.
func (r Reply) IsNil() bool { return r.Kind == ReplyNil }

// Encode returns the reply's wire bytes. A ReplyNone encodes to nil.
func (r Reply) Encode() []byte {
	switch r.Kind {
	case ReplyNil:
		return []byte("$-1\r\n")
	case ReplyText:
		buf := make([]byte, 0, len(r.Text)+3)
		buf = append(buf, '+')
		buf = append(buf, r.Text...)
		buf = append(buf, '\r', '\n')
		return buf
	default:
		return nil
	}
}

// WriteReply writes the reply's wire encoding to w. The caller owns
// flushing. Writing a ReplyNone is a no-op.
func WriteReply(w *bufio.Writer, r Reply) error {
	switch r.Kind {
	case ReplyNil:
		return writeNullBulk(w)
	case ReplyText:
		return writeSimpleString(w, r.Text)
	default:
		return nil
	}
}

func writeSimpleString(w *bufio.Writer, s string) error {
	if err := w.WriteByte('+'); err != nil {
		return err
	}
	if _, err := w.WriteString(s); err != nil {
		return err
	}
	_, err := w.WriteString("\r\n")
	return err
}

func writeNullBulk(w *bufio.Writer) error {
	_, err := w.WriteString("$-1\r\n")
	return err
}

// ParseReply decodes one reply buffer as written by WriteReply. It is
// the client-side counterpart used by the CLI and the tests.
func ParseReply(buf []byte) (Reply, error) {
	msg := string(buf)
	switch {
	case msg == "$-1\r\n":
		return NilReply(), nil
	case strings.HasPrefix(msg, "+") && strings.HasSuffix(msg, "\r\n"):
		return TextReply(msg[1 : len(msg)-2]), nil
	default:
		return Reply{}, fmt.Errorf("%w: %q", ErrBadReply, msg)
	}
}

// EncodeCommand encodes args as an array of bulk strings, the framing
// clients send. EncodeCommand(nil) returns nil.
func EncodeCommand(args ...string) []byte {
	if len(args) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteByte('*')
	b.WriteString(strconv.Itoa(len(args)))
	b.WriteString("\r\n")
	for _, arg := range args {
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(len(arg)))
		b.WriteString("\r\n")
		b.WriteString(arg)
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}
