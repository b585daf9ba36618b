package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-letterpdf"
)

// runTemplatesCmd lists the templates a generate run could use with the
// same configuration.
func runTemplatesCmd(ctx context.Context, args []string, env *Environment) int {
	fs, f := newTemplatesFlagSet()
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printTemplatesUsage(env.Stdout) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, errorHint(err, f.common.config))
		return exitCodeFor(err)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: loading templates: %v\n", err)
		return exitCodeFor(err)
	}

	names, err := letterpdf.ListTemplates(ctx, store)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitGeneral
	}
	for _, name := range names {
		fmt.Fprintln(env.Stdout, name)
	}
	return ExitSuccess
}
