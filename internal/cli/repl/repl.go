// Package repl provides the interactive mode of the Keyline CLI.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/keyline-io/keyline/internal/cli/connection"
	"github.com/keyline-io/keyline/internal/protocol"
)

// REPL is the read-eval-print loop bound to one wire connection.
type REPL struct {
	input     io.Reader
	output    io.Writer
	client    *connection.WireClient
	completer *Completer
	history   *History
}

// New creates a REPL reading stdin and writing stdout, sending
// commands through client.
func New(client *connection.WireClient) *REPL {
	return &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		client:    client,
		completer: NewCompleter(),
		history:   NewHistory(),
	}
}

// Run starts the loop. It returns when the input ends or the user
// types exit or quit. History is loaded on entry and saved on exit,
// both best effort.
func (r *REPL) Run() error {
	_ = r.history.Load()
	defer func() { _ = r.history.Save() }()

	reader := bufio.NewReader(r.input)

	for {
		fmt.Fprint(r.output, "keyline> ")

		line, err := reader.ReadString('\n')
		if err == io.EOF {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.history.Add(line)

		switch line {
		case "exit", "quit":
			return nil
		case "help":
			r.printHelp()
			continue
		}

		if err := r.execute(line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
	}
}

// execute sends one line as a command and prints the outcome.
func (r *REPL) execute(line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	reply, err := r.client.Do(args...)
	if err != nil {
		if connection.IsTimeout(err) {
			// The server answers some inputs with silence.
			fmt.Fprintln(r.output, "(no reply)")
			return nil
		}
		return err
	}

	fmt.Fprintln(r.output, renderReply(reply))
	return nil
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.output, "Commands:")
	fmt.Fprintln(r.output, "  ping                   liveness check")
	fmt.Fprintln(r.output, "  echo MESSAGE...        echo back the message")
	fmt.Fprintln(r.output, "  set KEY VALUE [px MS]  store a value, optionally with expiry")
	fmt.Fprintln(r.output, "  get KEY                read a value")
	fmt.Fprintln(r.output, "  help                   show this help")
	fmt.Fprintln(r.output, "  exit                   leave the session")
}

// renderReply translates a wire reply into REPL output.
func renderReply(reply protocol.Reply) string {
	switch {
	case reply.Kind == protocol.ReplyNil:
		return "(nil)"
	case reply.Kind == protocol.ReplyText && reply.Text == "":
		return "(empty)"
	case reply.Kind == protocol.ReplyText:
		return reply.Text
	default:
		return "(no reply)"
	}
}

// splitArgs splits a line into command tokens. Single and double
// quotes group words into one token; inside double quotes the escapes
// \" \\ \n \r \t are recognized. Quoted empty strings stay tokens.
func splitArgs(line string) ([]string, error) {
	var args []string
	var cur strings.Builder
	inToken := false

	flush := func() {
		if inToken {
			args = append(args, cur.String())
			cur.Reset()
			inToken = false
		}
	}

	i := 0
	for i < len(line) {
		switch c := line[i]; {
		case c == ' ' || c == '\t':
			flush()
			i++

		case c == '\'':
			inToken = true
			end := strings.IndexByte(line[i+1:], '\'')
			if end < 0 {
				return nil, fmt.Errorf("unterminated single quote")
			}
			cur.WriteString(line[i+1 : i+1+end])
			i += end + 2

		case c == '"':
			inToken = true
			i++
			closed := false
			for i < len(line) {
				if line[i] == '\\' && i+1 < len(line) {
					cur.WriteByte(unescape(line[i+1]))
					i += 2
					continue
				}
				if line[i] == '"' {
					i++
					closed = true
					break
				}
				cur.WriteByte(line[i])
				i++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated double quote")
			}

		default:
			inToken = true
			cur.WriteByte(c)
			i++
		}
	}
	flush()

	return args, nil
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	default:
		return c
	}
}
