package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/coinwatch/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "chat with the AI assistant about the watchlist" }
func (*assistCmd) Usage() string {
	return `cw assist [<prompt>]

  Starts an interactive session with the AI assistant. It reads the watchlist
  and the market catalog to answer. The Gemini API key is read from the
  GEMINI_API_KEY or GOOGLE_API_KEY environment variable.
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	trader := agent.NewTrader()
	analyst := agent.NewAnalyst(e.app, e.currency())
	trader.Log, analyst.Log = e.log, e.log
	a := agent.New(os.Stdout, os.Stdin, trader, analyst)
	a.Facilitator.Log = e.log
	a.Print = func(w io.Writer, md string) { fprintMarkdown(w, md) }

	if err := a.Run(ctx, client, strings.Join(f.Args(), " ")); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
