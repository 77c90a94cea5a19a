package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/keyline-io/keyline/internal/protocol"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:   "ping",
		Usage:  "Check that the server answers on the wire",
		Action: pingAction,
	}
}

func pingAction(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Ping(); err != nil {
		return fmt.Errorf("ping %s: %w", client.Addr(), err)
	}
	fmt.Fprintln(c.App.Writer, "PONG")
	return nil
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message through the server",
		ArgsUsage: "MESSAGE...",
		Action:    echoAction,
	}
}

func echoAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("echo requires a message")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	defer client.Close()

	args := append([]string{"echo"}, c.Args().Slice()...)
	reply, err := client.Do(args...)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, renderReply(reply))
	return nil
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a value under a key",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "px",
				Usage: "expiry in milliseconds",
			},
		},
		Action: setAction,
	}
}

func setAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("set requires KEY and VALUE arguments")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	defer client.Close()

	args := []string{"set", c.Args().Get(0), c.Args().Get(1)}
	if c.IsSet("px") {
		args = append(args, "px", strconv.FormatInt(c.Int64("px"), 10))
	}

	reply, err := client.Do(args...)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, renderReply(reply))
	return nil
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read the value stored under a key",
		ArgsUsage: "KEY",
		Action:    getAction,
	}
}

func getAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("get requires a KEY argument")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	defer client.Close()

	reply, err := client.Do("get", c.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, renderReply(reply))
	return nil
}

// renderReply maps a wire reply to its one-shot display form. Missing
// keys read as (nil) and stored empty strings as (empty), so the two
// stay distinguishable on screen.
func renderReply(reply protocol.Reply) string {
	switch reply.Kind {
	case protocol.ReplyNil:
		return "(nil)"
	case protocol.ReplyText:
		if reply.Text == "" {
			return "(empty)"
		}
		return reply.Text
	default:
		return "(no reply)"
	}
}
