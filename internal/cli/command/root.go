package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/keyline-io/keyline/internal/cli/config"
	"github.com/keyline-io/keyline/internal/cli/connection"
	"github.com/keyline-io/keyline/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "keyline-cli",
		Usage:   "command-line client for the keyline key-value server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			SetCommand(),
			GetCommand(),
			ConnectCommand(),
			SystemCommand(),
			BenchCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c.App.Metadata["cliConfig"] = cfg
			c.App.Metadata["connMgr"] = connection.NewManager()
			return nil
		},
	}
}

// globalFlags returns the global CLI flags. Connection flags carry no
// default value here: the config file supplies defaults, and IsSet
// decides which side wins in ParseGlobalFlags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server address, host:port or a unix socket path",
			EnvVars: []string{"KEYLINE_SERVER"},
		},
		&cli.StringFlag{
			Name:    "admin",
			Usage:   "admin HTTP address for system commands",
			EnvVars: []string{"KEYLINE_ADMIN"},
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "path to the CLI config file",
			EnvVars: []string{"KEYLINE_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
			EnvVars: []string{"KEYLINE_OUTPUT"},
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "enable verbose output",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "wire command timeout",
			EnvVars: []string{"KEYLINE_TIMEOUT"},
		},
	}
}

// GlobalFlags are the merged per-invocation settings.
type GlobalFlags struct {
	// Server connection
	Server string
	Admin  string

	// Output format
	Output string // table, json, yaml
	Wide   bool

	// Other
	Verbose bool
	Timeout time.Duration
}

// ParseGlobalFlags merges explicit flags and KEYLINE_* environment
// variables over the loaded CLI config. IsSet reports true for both
// flag and environment sources, so the file only fills the gaps.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	cfg := GetConfig(c)
	flags := &GlobalFlags{
		Server:  cfg.Server,
		Admin:   cfg.Admin,
		Output:  cfg.Output,
		Timeout: cfg.Timeout,
		Wide:    c.Bool("wide"),
		Verbose: c.Bool("verbose"),
	}
	if c.IsSet("server") {
		flags.Server = c.String("server")
	}
	if c.IsSet("admin") {
		flags.Admin = c.String("admin")
	}
	if c.IsSet("output") {
		flags.Output = c.String("output")
	}
	if c.IsSet("timeout") {
		flags.Timeout = c.Duration("timeout")
	}
	return flags
}

// GetConfig returns the CLI config loaded by the app's Before hook,
// or the built-in defaults when none was loaded.
func GetConfig(c *cli.Context) *config.CLIConfig {
	if c.App != nil {
		if cfg, ok := c.App.Metadata["cliConfig"].(*config.CLIConfig); ok {
			return cfg
		}
	}
	return config.Default()
}

// GetConnectionManager retrieves the connection manager from context.
func GetConnectionManager(c *cli.Context) *connection.Manager {
	if c.App != nil {
		if mgr, ok := c.App.Metadata["connMgr"].(*connection.Manager); ok {
			return mgr
		}
	}
	return nil
}

// EnsureConnected returns a wire client for the configured server
// address with the configured timeout applied. The connection itself
// is dialed lazily on first use.
func EnsureConnected(c *cli.Context) (*connection.WireClient, error) {
	flags := ParseGlobalFlags(c)
	if flags.Server == "" {
		return nil, fmt.Errorf("no server address configured")
	}

	client := connection.NewWireClient(flags.Server)
	client.SetTimeout(flags.Timeout)
	return client, nil
}

// AdminClient returns an HTTP client for the configured admin address.
func AdminClient(c *cli.Context) (*connection.HTTPClient, error) {
	flags := ParseGlobalFlags(c)
	if flags.Admin == "" {
		return nil, fmt.Errorf("no admin address configured")
	}
	return connection.NewHTTPClient(flags.Admin), nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
