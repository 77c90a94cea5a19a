// Package protocol implements the Keyline wire protocol codec.
//
// The protocol is a line-oriented, CRLF-terminated text format with
// three request encodings and two reply encodings:
//
//	Simple string:  +<text>\r\n
//	Bulk string:    $<length>\r\n<text>\r\n
//	Array:          *<count>\r\n followed by <count> element frames
//	Nil reply:      $-1\r\n
//
// Decoding is buffer-oriented: one raw read buffer holds exactly one
// frame. There is no streaming reassembly of partial frames; a buffer
// that does not parse degrades to a malformed frame whose token
// sequence is the single empty string. Decoding never fails with an
// error and never panics.
//
// Replies are tagged values rather than in-band sentinel strings, so a
// stored value is always distinguishable from the nil reply.
package protocol
