// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"csspc/assembler"
	"csspc/config"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by compile subcommand, values from command line override
	// configuration
	Mode         *assembler.Mode
	IncludePaths []string
	ShowDebug    bool
	Overwrite    bool

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// OutputMode returns mode requested on command line or configured one.
func (e *LocalEnv) OutputMode() assembler.Mode {
	if e.Mode != nil {
		return *e.Mode
	}
	if e.Cfg != nil {
		return e.Cfg.Compiler.OutputMode
	}
	return assembler.ModeExpanded
}

// ValidationPaths returns table search path: directories given on command
// line come before configured ones.
func (e *LocalEnv) ValidationPaths() []string {
	paths := append([]string{}, e.IncludePaths...)
	if e.Cfg != nil {
		paths = append(paths, e.Cfg.Compiler.ValidationPaths...)
	}
	return paths
}

// DebugDiagnostics reports whether debug diagnostics should be shown.
func (e *LocalEnv) DebugDiagnostics() bool {
	return e.ShowDebug || (e.Cfg != nil && e.Cfg.Compiler.ShowDebug)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
