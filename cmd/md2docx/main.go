package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ErrUnknownCommand is returned for a first argument that is neither a
// command nor a source directory.
var ErrUnknownCommand = errors.New("unknown command")

var commands = []string{"generate", "doctor", "config", "completion", "version", "help"}

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	if slices.Contains(os.Args, "-v") || slices.Contains(os.Args, "--verbose") {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches args[1:] and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, rest := args[1], args[2:]
	if !isCommand(cmd) {
		// "md2docx docs/ -o build" is shorthand for "md2docx generate docs/ -o build".
		if !looksLikeSource(cmd) {
			fmt.Fprintf(env.Stderr, "%v: %s\n\n", ErrUnknownCommand, cmd)
			printUsage(env.Stderr)
			return ExitUsage
		}
		cmd, rest = "generate", args[1:]
	}

	var err error
	switch cmd {
	case "generate":
		err = runGenerate(ctx, rest, env)
	case "doctor":
		return runDoctorCmd(ctx, rest, env)
	case "config":
		err = runConfig(rest, env)
	case "completion":
		err = runCompletion(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "md2docx %s (%s, %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	case "help":
		runHelp(rest, env)
	}

	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

func isCommand(s string) bool {
	return slices.Contains(commands, s)
}

// looksLikeSource reports whether a non-command first argument should start
// a generation: a flag, a path, or an existing directory.
func looksLikeSource(s string) bool {
	if strings.HasPrefix(s, "-") || strings.ContainsAny(s, `/\`) || s == "." {
		return true
	}
	info, err := os.Stat(s)
	return err == nil && info.IsDir()
}
