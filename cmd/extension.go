package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Environment variables passing the global flags to extensions.
const (
	EnvConfigFile = "COINWATCH_CONFIG"
	EnvStatePath  = "COINWATCH_STATE_PATH"
	EnvVerbose    = "COINWATCH_VERBOSE"
)

// IsCommand reports whether name is a built-in subcommand.
func IsCommand(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, cmds := range commands() {
		for _, c := range cmds {
			if c.Name() == name {
				return true
			}
		}
	}
	return false
}

// RunExtension executes the external cw-<subcommand> binary found in PATH,
// with the global flags in its environment.
// It returns false if there is no such binary, otherwise true and the exit
// code.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "cw-" + subcommand
	lp, err := exec.LookPath(name)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		EnvConfigFile+"="+*configFile,
		EnvVerbose+"="+strconv.FormatBool(*verbose),
	)
	if *stateFile != "" {
		cmd.Env = append(cmd.Env, EnvStatePath+"="+*stateFile)
	}

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
