package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/coinwatch/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	list bool
	out  io.Writer // stdout when nil.
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read the cw manual" }
func (*topicCmd) Usage() string {
	return `cw topic [-l] [<topic>...]

  Prints the manual pages about the watchlist, the coin catalog, the
  configuration, the saved state or the HTTP api. "*" prints them all.

  Without topic, prints the introduction and the table of topics.

Examples:
  cw topic watchlist
  cw topic config state
  cw topic -l
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "l", false, "only list the topic names, one per line")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w := c.out
	if w == nil {
		w = os.Stdout
	}
	topics, err := docs.GetAllTopics()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot list topics: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.list {
		for _, t := range topics {
			fmt.Fprintln(w, t)
		}
		return subcommands.ExitSuccess
	}

	args := f.Args()
	if len(args) == 0 {
		args = []string{"readme"}
	}
	md, err := docs.GetTopics(args...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\ntry one of: %s\n", err, strings.Join(topics, ", "))
		return subcommands.ExitFailure
	}
	fprintMarkdown(w, md)
	return subcommands.ExitSuccess
}
