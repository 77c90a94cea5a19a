// Package service provides domain services for Keyline.
//
// KeyValService maps parsed commands onto the key-value store and
// produces exactly one reply value per command.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/keyline-io/keyline/internal/core/domain"
	"github.com/keyline-io/keyline/internal/protocol"
)

// KVStore defines the storage interface for key-value operations.
type KVStore interface {
	// Write stores a value without an expiry deadline.
	Write(ctx context.Context, key, value string) error

	// WriteWithExpiry stores a value that expires ttl from now.
	WriteWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error

	// Read retrieves a live value. It reports domain.ErrKeyNotFound for
	// keys never written or already evicted, and domain.ErrKeyExpired
	// exactly once for a key whose deadline has passed.
	Read(ctx context.Context, key string) (string, error)
}

// KeyValService dispatches commands against a KVStore.
type KeyValService struct {
	store KVStore
}

// NewKeyValService creates a new KeyValService.
func NewKeyValService(store KVStore) *KeyValService {
	return &KeyValService{store: store}
}

// Execute parses a token sequence and dispatches the resulting command.
func (s *KeyValService) Execute(ctx context.Context, tokens []string) (protocol.Reply, error) {
	return s.Dispatch(ctx, domain.ParseCommand(tokens))
}

// Dispatch runs one command and returns its reply.
//
// The returned error is diagnostic only. It reports why a degenerate
// reply was chosen, so callers can log it; the reply itself is always
// complete and ready to encode. The mapping is total:
//
//	none            -> no reply at all
//	ping            -> +PONG
//	echo            -> +<args joined>
//	set             -> +OK after the write
//	get hit         -> +<value>
//	get miss        -> $-1 (nil), whether absent or expired
//	unknown/invalid -> + (empty reply), store untouched
func (s *KeyValService) Dispatch(ctx context.Context, cmd domain.Command) (protocol.Reply, error) {
	switch cmd.Verb {
	case domain.VerbPing:
		return protocol.TextReply("PONG"), nil

	case domain.VerbEcho:
		return protocol.TextReply(cmd.EchoText()), nil

	case domain.VerbSet:
		return s.dispatchSet(ctx, cmd)

	case domain.VerbGet:
		return s.dispatchGet(ctx, cmd)

	case domain.VerbUnknown, domain.VerbInvalid:
		return protocol.TextReply(""), cmd.Err

	default:
		return protocol.NoReply(), nil
	}
}

// dispatchSet stores the value and acknowledges with OK. The command
// arrives pre-validated; an invalid set never gets this far.
func (s *KeyValService) dispatchSet(ctx context.Context, cmd domain.Command) (protocol.Reply, error) {
	var err error
	if cmd.HasExpiry {
		err = s.store.WriteWithExpiry(ctx, cmd.Key, cmd.Value, cmd.Expiry)
	} else {
		err = s.store.Write(ctx, cmd.Key, cmd.Value)
	}
	if err != nil {
		return protocol.TextReply(""), domain.ErrInternalServer.WithCause(err)
	}
	return protocol.TextReply("OK"), nil
}

// dispatchGet reads the key. Absent and expired keys both produce the
// nil reply; the distinction survives only in the returned error.
func (s *KeyValService) dispatchGet(ctx context.Context, cmd domain.Command) (protocol.Reply, error) {
	value, err := s.store.Read(ctx, cmd.Key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) || errors.Is(err, domain.ErrKeyExpired) {
			return protocol.NilReply(), err
		}
		return protocol.NilReply(), domain.ErrInternalServer.WithCause(err)
	}
	return protocol.TextReply(value), nil
}
