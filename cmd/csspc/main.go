package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"csspc/misc"
	"csspc/state"
)

func main() {
	os.Exit(run(os.Args))
}

// run executes command line and returns process exit code.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := &hooks{}
	if err := newApp(h).Run(ctx, args); err != nil {
		// log is either not ready yet (argument parsing) or already closed
		if !h.logged {
			fmt.Fprintf(os.Stderr, "%s: %v\n", misc.GetAppName(), err)
		}
		return 1
	}
	return 0
}

func newApp(h *hooks) *cli.Command {
	return &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "compiles extended CSS style sheets with variables, expressions and nesting into plain CSS",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          h.before,
		After:           h.after,
		OnUsageError:    usageError,
		ExitErrHandler:  h.exitError,
		CommandNotFound: commandNotFound,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			compileCommand(),
			treeCommand(),
			dumpConfigCommand(),
		},
	}
}
