package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/keyline-io/keyline/internal/cli/connection"
	"github.com/keyline-io/keyline/internal/cli/output"
	"github.com/keyline-io/keyline/internal/cli/repl"
)

// ConnectCommand returns the connect command.
func ConnectCommand() *cli.Command {
	return &cli.Command{
		Name:      "connect",
		Usage:     "Open an interactive session against a server",
		ArgsUsage: "[SERVER]",
		Action:    connectAction,
	}
}

func connectAction(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	server := c.Args().First()
	if server == "" {
		server = flags.Server
	}
	if server == "" {
		return fmt.Errorf("no server address configured")
	}

	client := connection.NewWireClient(server)
	client.SetTimeout(flags.Timeout)
	defer client.Close()

	// Probe before entering the loop so a bad address fails here, not
	// on the first typed command.
	spinner := output.NewSpinner(c.App.Writer, fmt.Sprintf("Connecting to %s", server))
	spinner.Start()
	if err := client.Ping(); err != nil {
		spinner.Fail(fmt.Sprintf("Connection to %s failed", server))
		return err
	}
	spinner.Success(fmt.Sprintf("Connected to %s", server))

	if mgr := GetConnectionManager(c); mgr != nil {
		conn := &connection.Connection{Server: server, Admin: flags.Admin}
		if err := mgr.Connect(conn); err != nil {
			return err
		}
		defer mgr.Disconnect()
	}

	return repl.New(client).Run()
}
