package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/keyline-io/keyline/internal/cli/connection"
	"github.com/keyline-io/keyline/internal/cli/output"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server administration over the admin HTTP surface",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show the server stats snapshot",
				Action: systemStatus,
			},
			{
				Name:   "health",
				Usage:  "Check server health",
				Action: systemHealth,
			},
			{
				Name:  "purge",
				Usage: "Evict expired keys without waiting for reads",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Count what a purge would remove without evicting",
					},
				},
				Action: systemPurge,
			},
		},
	}
}

func systemStatus(c *cli.Context) error {
	client, err := AdminClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/stats")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result map[string]any
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(c.App.Writer, result)
	default:
		w := c.App.Writer
		fmt.Fprintf(w, "Keyline Status\n")
		fmt.Fprintf(w, "==============\n\n")

		if version, ok := result["version"].(string); ok {
			commit, _ := result["commit"].(string)
			fmt.Fprintf(w, "Version:      %s (%s)\n", version, commit)
		}
		if goVersion, ok := result["go_version"].(string); ok {
			fmt.Fprintf(w, "Go:           %s\n", goVersion)
		}
		if uptime, ok := result["uptime_seconds"].(float64); ok {
			fmt.Fprintf(w, "Uptime:       %s\n", (time.Duration(uptime) * time.Second).String())
		}
		if conns, ok := result["connections"].(float64); ok {
			fmt.Fprintf(w, "Connections:  %.0f\n", conns)
		}

		if store, ok := result["store"].(map[string]any); ok {
			fmt.Fprintf(w, "\nStore\n")
			fmt.Fprintf(w, "-----\n")
			if keys, ok := store["keys"].(float64); ok {
				fmt.Fprintf(w, "Keys:         %.0f\n", keys)
			}
			if expiring, ok := store["expiring_keys"].(float64); ok {
				fmt.Fprintf(w, "Expiring:     %.0f\n", expiring)
			}
			if reads, ok := store["reads"].(float64); ok {
				writes, _ := store["writes"].(float64)
				fmt.Fprintf(w, "Reads:        %.0f\n", reads)
				fmt.Fprintf(w, "Writes:       %.0f\n", writes)
			}
			if hits, ok := store["hits"].(float64); ok {
				misses, _ := store["misses"].(float64)
				fmt.Fprintf(w, "Hits/Misses:  %.0f/%.0f\n", hits, misses)
			}
			if expirations, ok := store["expirations"].(float64); ok {
				fmt.Fprintf(w, "Expirations:  %.0f\n", expirations)
			}
		}
		return nil
	}
}

func systemHealth(c *cli.Context) error {
	client, err := AdminClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/health")
	if err != nil {
		PrintError("health check failed: %v", err)
		return fmt.Errorf("server unhealthy")
	}

	var result struct {
		Status string `json:"status" yaml:"status"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(c.App.Writer, result)
	default:
		if result.Status != "healthy" {
			fmt.Fprintf(c.App.Writer, "✗ Server is unhealthy: %s\n", result.Status)
			return fmt.Errorf("server unhealthy")
		}
		fmt.Fprintf(c.App.Writer, "✓ Server is healthy\n")
		fmt.Fprintf(c.App.Writer, "  Target: %s\n", client.BaseURL())
		return nil
	}
}

func systemPurge(c *cli.Context) error {
	client, err := AdminClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	dryRun := c.Bool("dry-run")
	var body any
	if dryRun {
		body = map[string]any{"dry_run": true}
	}

	resp, err := client.Post(ctx, "/purge", body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		PurgedKeys int  `json:"purged_keys" yaml:"purged_keys"`
		DryRun     bool `json:"dry_run" yaml:"dry_run"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(c.App.Writer, result)
	default:
		if dryRun {
			fmt.Fprintf(c.App.Writer, "[dry run] %d expired keys would be purged\n", result.PurgedKeys)
		} else {
			fmt.Fprintf(c.App.Writer, "Purged %d expired keys\n", result.PurgedKeys)
		}
		return nil
	}
}
