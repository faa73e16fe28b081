package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"csspc/config"
	"csspc/misc"
	"csspc/state"
)

// hooks prepare and release program environment around subcommands.
type hooks struct {
	// error was already written to the log
	logged bool
}

func (h *hooks) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		// help or version
		return ctx, nil
	}
	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if err := setupEnv(env, configFile, cmd.Bool("debug")); err != nil {
		return ctx, err
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started",
		zap.Strings("args", cmd.Args().Slice()),
		zap.String("ver", misc.GetVersion()),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()))
	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

// setupEnv loads configuration, opens debug report when requested and
// starts logging.
func setupEnv(env *state.LocalEnv, configFile string, debugReport bool) (err error) {
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if debugReport {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		if len(configFile) > 0 {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData("config/"+filepath.Base(configFile), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return fmt.Errorf("unable to prepare logs: %w", err)
	}
	return nil
}

func (h *hooks) after(ctx context.Context, _ *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()))
	}
	env.RestoreStdLog()

	// from here on errors go directly to stderr
	return multierr.Combine(closeReport(env), removeEmptyPanicLog(env))
}

func closeReport(env *state.LocalEnv) error {
	if env.Rpt == nil {
		return nil
	}
	if err := env.Rpt.Close(); err != nil {
		return fmt.Errorf("unable to close debug report: %w", err)
	}
	return nil
}

func removeEmptyPanicLog(env *state.LocalEnv) error {
	if env.Cfg == nil || len(env.Cfg.Logging.FileLogger.Destination) == 0 {
		return nil
	}
	debug.SetCrashOutput(nil, debug.CrashOptions{})
	name := env.Cfg.Logging.PanicLogName()
	if fi, err := os.Stat(name); err != nil || fi.Size() != 0 {
		return nil
	}
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("unable to remove empty panic log file '%s': %w", name, err)
	}
	return nil
}

// exitError is called before After, while log is still open.
func (h *hooks) exitError(ctx context.Context, _ *cli.Command, err error) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Error("Program ended with error", zap.Error(err))
		h.logged = true
	}
}

// usageError leaves reporting to exitError or to run.
func usageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func commandNotFound(ctx context.Context, _ *cli.Command, name string) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Warn("Unknown command, nothing to do", zap.String("command", name))
	}
}
