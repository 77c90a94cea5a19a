package command

import (
	"bytes"
	"context"
	"flag"
	"net"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/keyline-io/keyline/internal/cli/config"
	"github.com/keyline-io/keyline/internal/cli/connection"
	"github.com/keyline-io/keyline/internal/core/service"
	"github.com/keyline-io/keyline/internal/server/httpserver"
	"github.com/keyline-io/keyline/internal/server/kvserver"
	"github.com/keyline-io/keyline/internal/storage/memory"
	"github.com/keyline-io/keyline/internal/telemetry/metric"
)

// startWireServer runs a real wire server on an ephemeral port and
// returns its address together with the backing store.
func startWireServer(t *testing.T) (string, *memory.Store) {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { store.Close() })

	svc := service.NewKeyValService(store)
	srv := kvserver.New(&kvserver.Config{
		Addr:            "127.0.0.1:0",
		ReadBufferBytes: 4096,
	}, svc, nil, metric.NewRegistry())
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start wire server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv.Addr().String(), store
}

// deadAddr returns an address nothing listens on.
func deadAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

// startAdminServer runs the real admin router over httptest and
// returns its base URL. A nil store gets a fresh one.
func startAdminServer(t *testing.T, store *memory.Store) string {
	t.Helper()
	if store == nil {
		store = memory.New()
		t.Cleanup(func() { store.Close() })
	}
	ts := httptest.NewServer(httpserver.NewRouter(&httpserver.RouterConfig{
		Store:   store,
		Metrics: metric.NewRegistry(),
	}))
	t.Cleanup(ts.Close)
	return ts.URL
}

// testContext creates a CLI context carrying the given flag values and
// positional arguments, with app output captured in the returned
// buffer. Command-local flags absent from globalFlags are declared on
// the fly from the value's type.
func testContext(t *testing.T, flags map[string]any, args []string) (*cli.Context, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	app := &cli.App{
		Name:  "test",
		Flags: globalFlags(),
		Metadata: map[string]any{
			"cliConfig": config.Default(),
			"connMgr":   connection.NewManager(),
		},
		Writer:    out,
		ErrWriter: out,
	}

	allFlags := append([]cli.Flag{}, globalFlags()...)
	seen := map[string]bool{}
	for _, f := range allFlags {
		for _, name := range f.Names() {
			seen[name] = true
		}
	}
	for name, val := range flags {
		if seen[name] {
			continue
		}
		switch v := val.(type) {
		case string:
			allFlags = append(allFlags, &cli.StringFlag{Name: name, Value: v})
		case int:
			allFlags = append(allFlags, &cli.IntFlag{Name: name, Value: v})
		case int64:
			allFlags = append(allFlags, &cli.Int64Flag{Name: name, Value: v})
		case bool:
			allFlags = append(allFlags, &cli.BoolFlag{Name: name, Value: v})
		case time.Duration:
			allFlags = append(allFlags, &cli.DurationFlag{Name: name, Value: v})
		}
	}

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range allFlags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag: %v", err)
		}
	}

	cliArgs := make([]string, 0, 2*len(flags)+len(args))
	for name, val := range flags {
		switch v := val.(type) {
		case string:
			cliArgs = append(cliArgs, "--"+name, v)
		case int:
			cliArgs = append(cliArgs, "--"+name, strconv.Itoa(v))
		case int64:
			cliArgs = append(cliArgs, "--"+name, strconv.FormatInt(v, 10))
		case bool:
			if v {
				cliArgs = append(cliArgs, "--"+name)
			}
		case time.Duration:
			cliArgs = append(cliArgs, "--"+name, v.String())
		}
	}
	cliArgs = append(cliArgs, args...)

	if err := set.Parse(cliArgs); err != nil {
		t.Fatalf("parse args %v: %v", cliArgs, err)
	}

	return cli.NewContext(app, set, nil), out
}
