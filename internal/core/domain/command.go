package domain

import (
	"strconv"
	"strings"
	"time"
)

// Verb identifies the dispatch target of a parsed command.
type Verb uint8

const (
	// VerbNone carries no dispatchable command. The session stays
	// silent: no reply bytes are written at all.
	VerbNone Verb = iota

	// VerbPing is the bare liveness command.
	VerbPing

	// VerbEcho replies with its arguments concatenated.
	VerbEcho

	// VerbSet stores a value, optionally with a px expiry.
	VerbSet

	// VerbGet reads a value.
	VerbGet

	// VerbUnknown is a command-shaped sequence whose name matches no
	// supported command. It draws the empty reply.
	VerbUnknown

	// VerbInvalid is a recognized command whose arguments are unusable.
	// It draws the empty reply and must not reach the store.
	VerbInvalid
)

// String returns the verb name used in logs and metric labels.
func (v Verb) String() string {
	switch v {
	case VerbPing:
		return "ping"
	case VerbEcho:
		return "echo"
	case VerbSet:
		return "set"
	case VerbGet:
		return "get"
	case VerbUnknown:
		return "unknown"
	case VerbInvalid:
		return "invalid"
	default:
		return "none"
	}
}

// Command is one parsed client command.
type Command struct {
	Verb Verb
	Name string   // raw command name token
	Args []string // argument tokens, name excluded

	Key       string        // target key for set and get
	Value     string        // stored value for set
	Expiry    time.Duration // px duration, meaningful only when HasExpiry
	HasExpiry bool

	// Err explains VerbUnknown and VerbInvalid outcomes. It never
	// reaches the wire; the protocol has no error reply encoding.
	Err *DomainError
}

// EchoText returns the echo reply: all arguments concatenated with no
// separator.
func (c Command) EchoText() string {
	return strings.Join(c.Args, "")
}

// ParseCommand turns a decoded token sequence into a Command.
//
// A sequence longer than one token is a named command: the first token
// is matched case-sensitively against echo, set, and get. A
// single-token sequence is either the bare liveness command or nothing
// at all; decode failures arrive here as the single empty token and
// fall into the same silent branch.
func ParseCommand(tokens []string) Command {
	if len(tokens) == 0 {
		return Command{Verb: VerbNone}
	}
	if len(tokens) == 1 {
		if tokens[0] == "ping" {
			return Command{Verb: VerbPing, Name: "ping"}
		}
		return Command{Verb: VerbNone, Name: tokens[0]}
	}

	name, args := tokens[0], tokens[1:]
	switch name {
	case "echo":
		return Command{Verb: VerbEcho, Name: name, Args: args}
	case "set":
		return parseSet(name, args)
	case "get":
		return Command{Verb: VerbGet, Name: name, Args: args, Key: args[0]}
	default:
		return Command{Verb: VerbUnknown, Name: name, Args: args, Err: ErrCommandUnknown}
	}
}

// parseSet validates set arguments: key, value, then an optional px
// option. The px scan covers the whole argument list, so a key or
// value spelled "px" starts the option; the first match wins. A px
// with no following token or a non-integer duration invalidates the
// command before it can touch the store.
func parseSet(name string, args []string) Command {
	cmd := Command{Verb: VerbSet, Name: name, Args: args}
	if len(args) < 2 {
		cmd.Verb = VerbInvalid
		cmd.Err = ErrCommandArguments.WithDetails("set requires key and value")
		return cmd
	}
	cmd.Key, cmd.Value = args[0], args[1]

	for i, arg := range args {
		if arg != "px" {
			continue
		}
		if i+1 >= len(args) {
			cmd.Verb = VerbInvalid
			cmd.Err = ErrCommandArguments.WithDetails("px requires a duration")
			return cmd
		}
		ms, err := strconv.ParseInt(args[i+1], 10, 64)
		if err != nil {
			cmd.Verb = VerbInvalid
			cmd.Err = ErrCommandExpiry.WithDetails(args[i+1])
			return cmd
		}
		cmd.Expiry = time.Duration(ms) * time.Millisecond
		cmd.HasExpiry = true
		return cmd
	}
	return cmd
}
