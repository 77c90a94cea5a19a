package protocol

import (
	"strconv"
	"strings"
)

// Kind discriminates the frame encodings on the wire.
type Kind uint8

const (
	// KindMalformed marks a buffer that did not parse as any encoding.
	KindMalformed Kind = iota
	// KindSimpleString is a +text\r\n frame.
	KindSimpleString
	// KindBulkString is a $length\r\ntext\r\n frame.
	KindBulkString
	// KindArray is a *count\r\n frame followed by element frames.
	KindArray
)

// String returns the kind name for logs and test output.
func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "simple"
	case KindBulkString:
		return "bulk"
	case KindArray:
		return "array"
	default:
		return "malformed"
	}
}

// Frame is one decoded request. Tokens always holds at least one
// element; a malformed frame holds exactly one empty token so that
// downstream dispatch can treat every frame uniformly.
type Frame struct {
	Kind   Kind
	Tokens []string
}

// Malformed is the decode result for any buffer that does not parse.
func Malformed() Frame {
	return Frame{Kind: KindMalformed, Tokens: []string{""}}
}

// Decode parses one raw read buffer into a frame. The first byte
// selects the encoding; an empty buffer or an unknown marker yields a
// malformed frame. Decode never returns an error: every failure mode
// degrades to Malformed().
func Decode(buf []byte) Frame {
	if len(buf) == 0 {
		return Malformed()
	}
	msg := string(buf)
	switch msg[0] {
	case '+':
		return decodeSimpleString(msg)
	case '$':
		return decodeBulkString(msg)
	case '*':
		return decodeArray(msg)
	default:
		return Malformed()
	}
}

// numberRun scans the run of digit and '-' bytes that starts right
// after the leading marker. It returns the run and the offset of the
// first byte past it.
func numberRun(msg string) (string, int) {
	i := 1
	for i < len(msg) && (isDigit(msg[i]) || msg[i] == '-') {
		i++
	}
	return msg[1:i], i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// decodeSimpleString extracts the number run that follows '+'. The
// shortest well-formed frame is "+d\r\n", so anything below four bytes
// is malformed. Bytes outside the number alphabet end the token; a
// frame like "+ping\r\n" therefore decodes to a single empty token.
func decodeSimpleString(msg string) Frame {
	if len(msg) < 4 {
		return Malformed()
	}
	run, _ := numberRun(msg)
	return Frame{Kind: KindSimpleString, Tokens: []string{run}}
}

// decodeBulkString parses $<length>\r\n<payload>\r\n. The declared
// length must account for the entire buffer: marker, length digits,
// both CRLF pairs, and the payload itself. Any arithmetic mismatch,
// a missing length, or a negative length is malformed. The separator
// bytes are located structurally and not inspected.
func decodeBulkString(msg string) Frame {
	if len(msg) <= 1 {
		return Malformed()
	}
	run, i := numberRun(msg)
	if run == "" {
		return Malformed()
	}
	n, err := strconv.Atoi(run)
	if err != nil || n < 0 {
		return Malformed()
	}
	if len(msg) != 1+len(run)+2+n+2 {
		return Malformed()
	}
	return Frame{Kind: KindBulkString, Tokens: []string{msg[i+2 : i+2+n]}}
}

// decodeArray parses *<count>\r\n followed by the element frames. The
// remainder after the count line is split on CRLF and empty fragments
// are discarded, so each element is expected to contribute exactly two
// fragments: its header and its payload line. A fragment total other
// than 2*count is malformed, which also rejects negative counts, and a
// zero count carries no command and is malformed as well.
func decodeArray(msg string) Frame {
	if len(msg) < 4 {
		return Malformed()
	}
	run, i := numberRun(msg)
	if run == "" {
		return Malformed()
	}
	count, err := strconv.Atoi(run)
	if err != nil {
		return Malformed()
	}
	i += 2
	var rest string
	if i < len(msg) {
		rest = msg[i:]
	}
	var frags []string
	for _, f := range strings.Split(rest, "\r\n") {
		if f != "" {
			frags = append(frags, f)
		}
	}
	if len(frags) != 2*count || count == 0 {
		return Malformed()
	}

	// Walk the fragments in header/payload pairs. A '+' header carries
	// its token inline and its partner fragment is skipped; a '$'
	// header's token is the partner fragment taken verbatim; any other
	// header contributes an empty token.
	tokens := make([]string, 0, count)
	for j := 0; j+1 < len(frags); j += 2 {
		switch frags[j][0] {
		case '+':
			tokens = append(tokens, frags[j][1:])
		case '$':
			tokens = append(tokens, frags[j+1])
		default:
			tokens = append(tokens, "")
		}
	}
	return Frame{Kind: KindArray, Tokens: tokens}
}
