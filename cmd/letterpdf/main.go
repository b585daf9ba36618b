package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-letterpdf/internal/config"
	"github.com/alnah/go-letterpdf/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(maxprocsLogger(os.Args[1:])))

	ctx, stop := notifyContext(context.Background())
	code := run(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}

// maxprocsLogger prints GOMAXPROCS adjustments only with -v/--verbose.
func maxprocsLogger(args []string) func(string, ...any) {
	for _, arg := range args {
		if arg == "-v" || arg == "--verbose" {
			return func(format string, a ...any) {
				fmt.Fprintf(os.Stderr, format+"\n", a...)
			}
		}
	}
	return func(string, ...any) {}
}

// run dispatches to a command and returns the process exit code. Without a
// command name, flags go to generate.
func run(ctx context.Context, args []string, env *Environment) int {
	cmd := "generate"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "generate":
		return runGenerateCmd(ctx, args, env)
	case "templates":
		return runTemplatesCmd(ctx, args, env)
	case "doctor":
		return runDoctorCmd(args, env)
	case "version":
		fmt.Fprintf(env.Stdout, "letterpdf %s\n", Version)
		return ExitSuccess
	case "help":
		return runHelp(args, env)
	case "completion":
		if err := runCompletion(args, env); err != nil {
			fmt.Fprintf(env.Stderr, "error: %v\n", err)
			return ExitUsage
		}
		return ExitSuccess
	}

	fmt.Fprintf(env.Stderr, "error: unknown command %q\n\n", cmd)
	printUsage(env.Stderr)
	return ExitUsage
}

// runGenerateCmd parses generate flags, runs the command and reports errors.
func runGenerateCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseGenerateFlags(args, env.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		fmt.Fprintln(env.Stderr, "Run 'letterpdf help generate' for usage.")
		return ExitUsage
	}

	err = runGenerate(ctx, positional, flags, env)
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, errorHint(err, flags.common.config))
	return exitCodeFor(err)
}

// errorHint returns the hint for errors raised before any letter ran, or
// the hint a single failed letter carries.
func errorHint(err error, configFlag string) string {
	var be *batchError
	if errors.As(err, &be) {
		return be.hint
	}
	if errors.Is(err, config.ErrConfigNotFound) {
		path := configFlag
		if path == "" {
			path = os.Getenv("LETTERPDF_CONFIG")
		}
		return hints.ForConfigNotFound(path)
	}
	return ""
}
