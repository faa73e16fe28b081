package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"csspc/compile"
	"csspc/config"
	"csspc/state"
)

func compileCommand() *cli.Command {
	return &cli.Command{
		Name:         "compile",
		Usage:        "Compiles style sheet to CSS",
		OnUsageError: usageError,
		Action:       compile.Run,
		Flags:        compile.Flags(),
		ArgsUsage:    "SOURCE [DESTINATION]",
		CustomHelpTemplate: cli.CommandHelpTemplate + `
SOURCE:
    path to style sheet to compile, encoding is taken from leading @charset rule, UTF-8 otherwise

DESTINATION:
    path to resulting CSS file, if absent - STDOUT
    nothing is written when compilation reported errors

Selector names are checked against validation tables (pseudo-classes.yaml,
pseudo-elements.yaml, etc) found in directories given with --include first
and configured validation_paths next.
`,
	}
}

func treeCommand() *cli.Command {
	return &cli.Command{
		Name:         "tree",
		Usage:        "Prints compiled tree of style sheet",
		OnUsageError: usageError,
		Action:       compile.Tree,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "include", Aliases: []string{"I"}, Usage: "search `DIR` for validation tables before configured directories"},
		},
		ArgsUsage: "SOURCE",
	}
}

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:         "dumpconfig",
		Usage:        "Dumps either default or actual configuration (YAML)",
		OnUsageError: usageError,
		Action:       dumpConfig,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
		},
		ArgsUsage: "DESTINATION",
		CustomHelpTemplate: cli.CommandHelpTemplate + `
DESTINATION:
    file name to write configuration to, if absent - STDOUT

Active configuration is composition of defaults and values from the
configuration file. Use --default to see defaults embedded into the program.
`,
	}
}

func dumpConfig(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		data []byte
		err  error
		kind = "actual"
	)
	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().Get(0)
	env.Log.Info("Outputting configuration", zap.String("state", kind), zap.String("file", fname))
	if len(fname) == 0 {
		_, err = os.Stdout.Write(data)
	} else {
		err = os.WriteFile(fname, data, 0644)
	}
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
