package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/coinwatch/server"
	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"
)

type watchCmd struct {
	interval time.Duration
	addr     string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "serve the watchlist API and refresh it periodically" }
func (*watchCmd) Usage() string {
	return `cw watch [-interval <duration>] [-addr <host:port>]

  Serves the JSON API and the metrics, and refreshes the watchlist every
  interval until interrupted.

Usage Examples:
$ cw watch -interval 30s -addr localhost:8080

`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.interval, "interval", 0, "Refresh interval. Defaults to the configured one.")
	f.StringVar(&c.addr, "addr", "", "Address to serve the API on. Defaults to the configured one.")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	interval, addr := c.interval, c.addr
	if interval <= 0 {
		interval = e.cfg.Refresh.Interval
	}
	if addr == "" {
		addr = e.cfg.Server.Addr
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(&server.Config{
		App: e.app,
		Options: server.Options{
			Currency:    e.currency(),
			PageSize:    e.cfg.View.PageSize,
			SearchLimit: e.cfg.View.SearchLimit,
		},
		Gatherer: e.reg,
		Log:      e.log,
	})

	// failures are logged, the API serves the last known prices.
	_ = e.app.RefreshFromMarket(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Serve(ctx, addr, router, e.log) })
	g.Go(func() error { return e.app.AutoRefresh(ctx, interval) })
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
