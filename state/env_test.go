package state

import (
	"context"
	"slices"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"csspc/assembler"
	"csspc/config"
)

func TestContextWithEnv(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	if ctx == nil {
		t.Fatal("ContextWithEnv() returned nil")
	}
	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if env.start.IsZero() {
		t.Error("Environment start time not set")
	}
}

func TestEnvFromContext_Missing(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when env not in context")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))

	time.Sleep(10 * time.Millisecond)
	uptime := env.Uptime()
	if uptime < 10*time.Millisecond {
		t.Errorf("Uptime() = %v, expected at least 10ms", uptime)
	}
	if uptime > time.Second {
		t.Errorf("Uptime() = %v, unexpectedly large", uptime)
	}
}

func TestLocalEnv_OutputMode(t *testing.T) {
	tidy := assembler.ModeTidy
	tests := []struct {
		name string
		env  LocalEnv
		want assembler.Mode
	}{
		{"nothing set", LocalEnv{}, assembler.ModeExpanded},
		{"configured", LocalEnv{Cfg: &config.Config{Compiler: config.CompilerConfig{OutputMode: assembler.ModeCompressed}}}, assembler.ModeCompressed},
		{"command line wins", LocalEnv{
			Cfg:  &config.Config{Compiler: config.CompilerConfig{OutputMode: assembler.ModeCompressed}},
			Mode: &tidy,
		}, assembler.ModeTidy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.env.OutputMode(); got != tt.want {
				t.Errorf("OutputMode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLocalEnv_ValidationPaths(t *testing.T) {
	env := &LocalEnv{
		Cfg:          &config.Config{Compiler: config.CompilerConfig{ValidationPaths: []string{"tables"}}},
		IncludePaths: []string{"mine", "ours"},
	}
	want := []string{"mine", "ours", "tables"}
	if got := env.ValidationPaths(); !slices.Equal(got, want) {
		t.Errorf("ValidationPaths() = %v, want %v", got, want)
	}
	// result must not alias command line slice
	got := env.ValidationPaths()
	got[0] = "changed"
	if env.IncludePaths[0] != "mine" {
		t.Error("ValidationPaths() result aliases IncludePaths")
	}
	if got := (&LocalEnv{}).ValidationPaths(); len(got) != 0 {
		t.Errorf("ValidationPaths() of empty env = %v", got)
	}
}

func TestLocalEnv_DebugDiagnostics(t *testing.T) {
	if (&LocalEnv{}).DebugDiagnostics() {
		t.Error("DebugDiagnostics() = true for empty env")
	}
	if !(&LocalEnv{ShowDebug: true}).DebugDiagnostics() {
		t.Error("DebugDiagnostics() ignores command line")
	}
	env := &LocalEnv{Cfg: &config.Config{Compiler: config.CompilerConfig{ShowDebug: true}}}
	if !env.DebugDiagnostics() {
		t.Error("DebugDiagnostics() ignores configuration")
	}
}

func TestLocalEnv_RedirectStdLog(t *testing.T) {
	t.Run("with logger", func(t *testing.T) {
		env := &LocalEnv{
			Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
		}
		for i := range 3 {
			env.RedirectStdLog()
			if env.restoreStdLog == nil {
				t.Errorf("Iteration %d: restoreStdLog not set", i)
			}
			env.RestoreStdLog()
		}
	})

	t.Run("without logger", func(t *testing.T) {
		env := &LocalEnv{}
		env.RedirectStdLog()
		if env.restoreStdLog != nil {
			t.Error("Expected restoreStdLog to remain nil")
		}
		env.RestoreStdLog()
	})
}
