// Package cmd implements the cw command line: a crypto watchlist kept in a
// state slot and priced by CoinGecko.
package cmd

import (
	"flag"
	"os"

	"github.com/google/subcommands"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", os.Getenv(EnvConfigFile), "Path to the YAML configuration file")
	stateFile  = flag.String("state", "", "Path to the state file, overrides the configured state slot")
	verbose    = flag.Bool("v", false, "Log debug messages")
)

// commands returns every subcommand with its group.
func commands() map[string][]subcommands.Command {
	return map[string][]subcommands.Command{
		"catalog": {
			&catalogCmd{},
			&selectCmd{},
		},
		"watchlist": {
			&addCmd{},
			&removeCmd{},
			&holdingsCmd{},
			&refreshCmd{},
			&showCmd{},
			&resetCmd{},
		},
		"service": {
			&watchCmd{},
			&assistCmd{},
			&topicCmd{},
		},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for group, cmds := range commands() {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}
