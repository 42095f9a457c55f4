package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestRunExtension(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extensions are shell scripts in this test")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "env.txt")
	script := "#!/bin/sh\nenv | grep '^COINWATCH_' > \"$1\"\nexit 3\n"
	if err := os.WriteFile(filepath.Join(dir, "cw-hello"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	*configFile, *stateFile, *verbose = "cw.yaml", "/tmp/state.json", true
	t.Cleanup(func() { *configFile, *stateFile, *verbose = "", "", false })

	found, code := RunExtension("hello", []string{out})
	if !found || code != 3 {
		t.Fatalf("RunExtension() = %v, %d, want true, 3", found, code)
	}
	env, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		EnvConfigFile + "=cw.yaml",
		EnvStatePath + "=/tmp/state.json",
		EnvVerbose + "=true",
	} {
		if !strings.Contains(string(env), want) {
			t.Errorf("extension environment misses %q:\n%s", want, env)
		}
	}

	if found, _ := RunExtension("missing", nil); found {
		t.Error("RunExtension(missing) found an extension")
	}
}

func TestIsCommand(t *testing.T) {
	for name, want := range map[string]bool{"show": true, "help": true, "topic": true, "hello": false} {
		if got := IsCommand(name); got != want {
			t.Errorf("IsCommand(%q) = %v, want %v", name, got, want)
		}
	}
}
