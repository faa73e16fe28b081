package diag

import (
	"bytes"
	"testing"

	"go.uber.org/zap/zaptest"

	"csspc/node"
)

func TestReporter_Format(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(zaptest.NewLogger(t), WithWriter(&buf))

	r.Error(node.Position{File: "style.scss", Line: 7}, "unknown %s %q", "pseudo-class", "hovr")
	r.Warning(node.Position{File: "style.scss", Line: 9}, "careful")

	want := "style.scss(7): error: unknown pseudo-class \"hovr\"\n" +
		"style.scss(9): warning: careful\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
	if r.ErrorCount() != 1 || r.WarningCount() != 1 {
		t.Errorf("counts = %d/%d", r.ErrorCount(), r.WarningCount())
	}
}

func TestReporter_DebugSuppressed(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(nil, WithWriter(&buf))
	r.Debug(node.Position{Line: 1}, "hidden")
	if buf.Len() != 0 || len(r.Messages()) != 0 {
		t.Errorf("debug message leaked: %q", buf.String())
	}

	buf.Reset()
	r = NewReporter(nil, WithWriter(&buf), WithDebug(true))
	r.Debug(node.Position{File: "x", Line: 1}, "shown")
	if buf.String() != "x(1): debug: shown\n" {
		t.Errorf("output = %q", buf.String())
	}
	if r.Count(SeverityDebug) != 1 {
		t.Errorf("Count(debug) = %d", r.Count(SeverityDebug))
	}
}

func TestReporter_Reset(t *testing.T) {
	r := NewReporter(nil)
	r.Info(node.Position{}, "one")
	r.Error(node.Position{}, "two")
	r.Reset()
	if len(r.Messages()) != 0 || r.ErrorCount() != 0 || r.Count(SeverityInfo) != 0 {
		t.Error("Reset() kept state")
	}
}

func TestParseSeverity(t *testing.T) {
	for _, name := range SeverityNames() {
		s, err := ParseSeverity(name)
		if err != nil {
			t.Fatalf("ParseSeverity(%q) error = %v", name, err)
		}
		if s.String() != name {
			t.Errorf("round trip %q -> %q", name, s.String())
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Error("ParseSeverity accepted unknown name")
	}
}
