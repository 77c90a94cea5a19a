package kvserver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/keyline-io/keyline/internal/core/domain"
	"github.com/keyline-io/keyline/internal/protocol"
	"github.com/keyline-io/keyline/internal/telemetry/logger"
)

// session is one live client connection. Each command arrives in a
// single read into buf; replies go out through bw.
type session struct {
	id     string
	conn   net.Conn
	bw     *bufio.Writer
	buf    []byte
	closed atomic.Bool
}

func newSession(conn net.Conn, bufSize int) *session {
	if bufSize <= 0 {
		bufSize = DefaultConfig().ReadBufferBytes
	}
	return &session{
		id:   ulid.Make().String(),
		conn: conn,
		bw:   bufio.NewWriter(conn),
		buf:  make([]byte, bufSize),
	}
}

// Close closes the underlying connection once. Closing unblocks a
// pending read, which ends the serve loop.
func (c *session) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}

// serve runs the command loop for one session. The loop ends when a
// read fails or returns no bytes; a read that delivers bytes together
// with an error is served before the session closes.
func (s *Server) serve(ctx context.Context, sess *session) {
	defer sess.Close()

	ctx = logger.WithConnID(ctx, sess.id)
	log := s.logger.With("conn_id", sess.id, "remote", sess.conn.RemoteAddr().String())
	log.Debug("session opened")
	defer log.Debug("session closed")

	for {
		if s.cfg.ReadTimeout > 0 {
			_ = sess.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}
		n, err := sess.conn.Read(sess.buf)
		if n > 0 {
			s.metrics.AddReadBytes(n)
			if !s.handleRequest(ctx, sess, log, sess.buf[:n]) {
				return
			}
		}
		if err != nil || n == 0 {
			switch {
			case err == nil, errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			case isTimeout(err):
				log.Debug("read timeout", "timeout", s.cfg.ReadTimeout)
			default:
				log.Debug("read failed", "error", err)
			}
			return
		}
	}
}

// handleRequest decodes and dispatches one read buffer and writes the
// reply. It reports whether the session should continue.
func (s *Server) handleRequest(ctx context.Context, sess *session, log logger.Logger, raw []byte) bool {
	frame := protocol.Decode(raw)
	if frame.Kind == protocol.KindMalformed {
		log.Debug("malformed frame", "raw", logger.ClipBytes(raw, 64))
	}
	cmd := domain.ParseCommand(frame.Tokens)

	start := time.Now()
	reply, err := s.svc.Dispatch(ctx, cmd)
	s.metrics.RecordCommand(cmd.Verb.String())
	s.metrics.ObserveCommandDuration(cmd.Verb.String(), time.Since(start).Seconds())
	s.metrics.RecordReply(reply.Kind.String())
	if err != nil {
		log.Debug("command degraded", "verb", cmd.Verb.String(), "error", err)
	}

	wire := reply.Encode()
	if len(wire) == 0 {
		return true
	}
	if s.cfg.WriteTimeout > 0 {
		_ = sess.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	if _, err := sess.bw.Write(wire); err != nil {
		log.Debug("write failed", "error", err)
		return false
	}
	if err := sess.bw.Flush(); err != nil {
		log.Debug("flush failed", "error", err)
		return false
	}
	s.metrics.AddWrittenBytes(len(wire))
	return true
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
