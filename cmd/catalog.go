package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/coinwatch/renderer"
	"github.com/google/subcommands"
)

type catalogCmd struct {
	term  string
	fresh bool
	limit int
}

func (*catalogCmd) Name() string     { return "catalog" }
func (*catalogCmd) Synopsis() string { return "list the coins available on the market" }
func (*catalogCmd) Usage() string {
	return `cw catalog [-q <term>] [-refresh] [-n <limit>]

  Lists the top coins by market capitalization, with their price and 24h
  change. Selected and watched coins are flagged.

Usage Examples:
# Coins whose name or symbol contains "bit".
$ cw catalog -q bit

`
}

func (c *catalogCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.term, "q", "", "Only list coins whose name or symbol contains this term, case insensitive.")
	f.BoolVar(&c.fresh, "refresh", false, "Ignore the cached catalog.")
	f.IntVar(&c.limit, "n", 0, "Maximum number of coins listed. Defaults to the configured search limit.")
}

func (c *catalogCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx, c.fresh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	if err := e.app.FetchCatalog(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	limit := c.limit
	if limit <= 0 {
		limit = e.cfg.View.SearchLimit
	}
	s := e.app.State()
	printMarkdown(renderer.RenderCatalog(renderer.NewCatalogView(s.Catalog, s.Portfolio, c.term, limit, e.currency())))
	return subcommands.ExitSuccess
}

type selectCmd struct {
	clear bool
}

func (*selectCmd) Name() string     { return "select" }
func (*selectCmd) Synopsis() string { return "select or unselect catalog coins" }
func (*selectCmd) Usage() string {
	return `cw select [-clear] <id>...

  Toggles the selection of the catalog coins with the given ids. Selected
  coins are added to the watchlist by 'cw add'.

Usage Examples:
$ cw select bitcoin ethereum

`
}

func (c *selectCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.clear, "clear", false, "Unselect every coin first.")
}

func (c *selectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 && !c.clear {
		fmt.Fprintln(os.Stderr, "Error: at least one coin id is required.")
		return subcommands.ExitUsageError
	}
	e, err := openEnv(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	if c.clear {
		e.app.ClearSelection()
	}
	if f.NArg() > 0 {
		// selected coins can still be unselected without the catalog.
		if err := e.app.EnsureCatalog(ctx); err != nil {
			e.log.WithError(err).Warn("catalog unavailable")
		}
	}

	var errs []error
	for _, id := range f.Args() {
		errs = append(errs, e.app.ToggleSelectionByID(id))
	}

	var ids []string
	for _, coin := range e.app.Catalog().Selected {
		ids = append(ids, coin.ID)
	}
	fmt.Printf("Selected: %s\n", strings.Join(ids, ", "))

	if err := errors.Join(errs...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
