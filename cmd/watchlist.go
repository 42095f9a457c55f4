package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/coinwatch"
	"github.com/etnz/coinwatch/renderer"
	"github.com/google/subcommands"
)

type addCmd struct{}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add the selected coins to the watchlist" }
func (*addCmd) Usage() string {
	return `cw add

  Adds the selected coins to the watchlist, with zero holdings, and clears
  the selection. Coins already watched are skipped.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	before := len(e.app.Portfolio().Watchlist)
	if len(e.app.Catalog().Selected) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing selected, see 'cw select'.")
		return subcommands.ExitSuccess
	}
	s := e.app.AddSelection()
	fmt.Printf("Added %d coin(s) to the watchlist.\n", len(s.Portfolio.Watchlist)-before)
	return subcommands.ExitSuccess
}

type removeCmd struct{}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove coins from the watchlist" }
func (*removeCmd) Usage() string {
	return `cw remove <id>...

  Removes the coins with the given ids from the watchlist, their holdings are
  forgotten.
`
}

func (c *removeCmd) SetFlags(f *flag.FlagSet) {}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one coin id is required.")
		return subcommands.ExitUsageError
	}
	e, err := openEnv(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	for _, id := range f.Args() {
		if !e.app.Portfolio().Has(id) {
			fmt.Fprintf(os.Stderr, "Warning: %q is not watched.\n", id)
			continue
		}
		e.app.RemoveFromWatchlist(id)
		fmt.Printf("Removed %s.\n", id)
	}
	return subcommands.ExitSuccess
}

type holdingsCmd struct{}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "set the holdings of a watched coin" }
func (*holdingsCmd) Usage() string {
	return `cw holdings <id> <amount>

  Sets the amount of a watched coin held, its value is updated at once.

Usage Examples:
$ cw holdings bitcoin 0.25

`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {}

func (c *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: a coin id and an amount are required.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	q, err := coinwatch.ParseQuantity(f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	e, err := openEnv(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	if !e.app.Portfolio().Has(id) {
		fmt.Fprintf(os.Stderr, "Error: %q is not watched, see 'cw select' and 'cw add'.\n", id)
		return subcommands.ExitFailure
	}
	if err := e.app.SetHoldings(id, q); err != nil {
		var verr *coinwatch.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	coin, _ := e.app.Portfolio().Get(id)
	fmt.Printf("%s: %s held, worth %s.\n", id, coin.Holdings, coin.Value.In(e.currency()))
	return subcommands.ExitSuccess
}

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "update the watchlist with the latest market data" }
func (*refreshCmd) Usage() string {
	return `cw refresh

  Fetches the price, 24h change and sparkline of every watched coin, and
  displays the dashboard.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	if err := e.app.RefreshFromMarket(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderDashboard(renderer.NewDashboard(e.app.Portfolio(), e.currency(), 1, e.cfg.View.PageSize)))
	return subcommands.ExitSuccess
}

type showCmd struct {
	page int
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display the watchlist dashboard" }
func (*showCmd) Usage() string {
	return `cw show [-p <page>]

  Displays the portfolio total, its allocation, and a page of the watchlist,
  as of the last refresh.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.page, "p", 1, "Page of the watchlist to display.")
}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	printMarkdown(renderer.RenderDashboard(renderer.NewDashboard(e.app.Portfolio(), e.currency(), c.page, e.cfg.View.PageSize)))
	return subcommands.ExitSuccess
}

type resetCmd struct {
	yes bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "empty the watchlist and the selection" }
func (*resetCmd) Usage() string {
	return `cw reset -y

  Empties the watchlist, forgets the holdings, the last update and the
  selection.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Confirm the reset.")
}

func (c *resetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(os.Stderr, "Error: reset erases the watchlist, use -y to confirm.")
		return subcommands.ExitUsageError
	}
	e, err := openEnv(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	e.app.Reset()
	fmt.Println("Watchlist reset.")
	return subcommands.ExitSuccess
}
