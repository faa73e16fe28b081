package compile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"csspc/assembler"
	"csspc/diag"
	"csspc/state"
	"csspc/validation"
)

// Flags returns options of the compile subcommand.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "mode", Aliases: []string{"m"},
			Usage: "output `MODE` (one of: " + strings.Join(assembler.ModeNames(), ", ") + "), overrides configuration"},
		&cli.StringSliceFlag{Name: "include", Aliases: []string{"I"},
			Usage: "search `DIR` for validation tables before configured directories, may be repeated"},
		&cli.BoolFlag{Name: "show-debug", Usage: "report @debug messages and compiler debug diagnostics"},
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "overwrite existing destination file"},
	}
}

// Run is the compile subcommand: SOURCE [DESTINATION], output goes to STDOUT
// when destination is absent.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("compile")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	dst := cmd.Args().Get(1)
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if cmd.IsSet("mode") {
		mode, err := assembler.ParseMode(cmd.String("mode"))
		if err != nil {
			return fmt.Errorf("unable to use output mode: %w", err)
		}
		env.Mode = &mode
	}
	env.IncludePaths = cmd.StringSlice("include")
	env.ShowDebug = cmd.Bool("show-debug")
	env.Overwrite = cmd.Bool("overwrite")

	if len(dst) > 0 && !env.Overwrite {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("destination file already exists: %s", dst)
		}
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read source: %w", err)
	}
	if err := env.Rpt.StoreCopy("source/"+filepath.Base(src), src); err != nil {
		log.Warn("Unable to store source in debug report", zap.Error(err))
	}

	tables := validation.NewTables(log, env.ValidationPaths()...)
	if err := tables.Preload(); err != nil {
		return fmt.Errorf("unable to load validation data: %w", err)
	}

	// canonical diagnostic lines for the debug report, console gets them
	// through the logger
	var lines bytes.Buffer
	rpt := diag.NewReporter(log, diag.WithDebug(env.DebugDiagnostics()), diag.WithWriter(&lines))
	defer func() {
		if lines.Len() > 0 {
			env.Rpt.StoreData("diagnostics.txt", lines.Bytes())
		}
	}()

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("mode", env.OutputMode()))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)),
			zap.Int("errors", rpt.ErrorCount()), zap.Int("warnings", rpt.WarningCount()))
	}(time.Now())

	p := NewPipeline(log, rpt, tables, env.OutputMode(), env.Cfg.Compiler.Precision)
	out, err := p.Run(ctx, data, src)
	if err != nil {
		return err
	}
	return write(env, dst, out)
}

func write(env *state.LocalEnv, dst, out string) error {
	if len(dst) == 0 {
		_, err := os.Stdout.WriteString(out)
		return err
	}
	if err := os.WriteFile(dst, []byte(out), 0644); err != nil {
		return fmt.Errorf("unable to write destination: %w", err)
	}
	env.Rpt.Store("output/"+filepath.Base(dst), dst)
	return nil
}
