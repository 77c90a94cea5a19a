package command

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/keyline-io/keyline/internal/cli/connection"
	"github.com/keyline-io/keyline/internal/cli/output"
)

// BenchCommand returns the bench command.
func BenchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Run a simple load test against a server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "requests",
				Aliases: []string{"n"},
				Usage:   "total requests per phase",
				Value:   10000,
			},
			&cli.IntFlag{
				Name:    "clients",
				Aliases: []string{"c"},
				Usage:   "concurrent client connections",
				Value:   8,
			},
			&cli.IntFlag{
				Name:  "value-size",
				Usage: "value payload size in bytes",
				Value: 64,
			},
		},
		Action: benchAction,
	}
}

// benchResult is one phase's outcome.
type benchResult struct {
	Phase     string  `json:"phase" yaml:"phase"`
	Requests  int     `json:"requests" yaml:"requests"`
	Errors    int     `json:"errors" yaml:"errors"`
	Elapsed   string  `json:"elapsed" yaml:"elapsed"`
	OpsPerSec float64 `json:"ops_per_sec" yaml:"ops_per_sec"`
}

func benchAction(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	if flags.Server == "" {
		return fmt.Errorf("no server address configured")
	}

	requests := c.Int("requests")
	clients := c.Int("clients")
	if requests <= 0 || clients <= 0 {
		return fmt.Errorf("requests and clients must be positive")
	}
	if clients > requests {
		clients = requests
	}
	value := strings.Repeat("x", c.Int("value-size"))

	// The get phase reads exactly the keys the set phase wrote, so a
	// nonzero miss count there means lost writes, not cold keys.
	phases := []struct {
		name    string
		argsFor func(i int) []string
	}{
		{"ping", func(int) []string { return []string{"ping"} }},
		{"set", func(i int) []string { return []string{"set", benchKey(i), value} }},
		{"get", func(i int) []string { return []string{"get", benchKey(i)} }},
	}

	// The bar goes to stderr so formatted results stay parseable.
	barW := c.App.ErrWriter
	if barW == nil {
		barW = os.Stderr
	}

	results := make([]benchResult, 0, len(phases))
	for _, phase := range phases {
		res := runBenchPhase(flags, phase.name, phase.argsFor, requests, clients, barW)
		if res.Errors == res.Requests {
			return fmt.Errorf("bench %s: all %d requests failed", res.Phase, res.Requests)
		}
		results = append(results, res)
	}

	formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
	return formatter.Format(c.App.Writer, results)
}

// runBenchPhase fans requests out over clients dedicated connections
// and gathers one result. Workers pull request indexes from a shared
// counter, so the load stays balanced when some connections are slow.
func runBenchPhase(flags *GlobalFlags, name string, argsFor func(int) []string, requests, clients int, barW io.Writer) benchResult {
	bar := output.NewProgressBar(barW, name, int64(requests))

	var (
		wg       sync.WaitGroup
		next     atomic.Int64
		errCount atomic.Int64
	)

	start := time.Now()
	for w := 0; w < clients; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			client := connection.NewWireClient(flags.Server)
			client.SetTimeout(flags.Timeout)
			defer client.Close()

			for {
				i := int(next.Add(1)) - 1
				if i >= requests {
					return
				}
				if _, err := client.Do(argsFor(i)...); err != nil {
					errCount.Add(1)
				}
				bar.Increment(1)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)
	bar.Finish()

	return benchResult{
		Phase:     name,
		Requests:  requests,
		Errors:    int(errCount.Load()),
		Elapsed:   elapsed.Round(time.Millisecond).String(),
		OpsPerSec: float64(requests) / elapsed.Seconds(),
	}
}

func benchKey(i int) string {
	return fmt.Sprintf("bench:%d", i)
}
