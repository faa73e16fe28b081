// Package diag accumulates and dispatches diagnostics produced while
// compiling a style sheet.
package diag

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"csspc/node"
)

// Message is a single diagnostic.
type Message struct {
	Pos      node.Position
	Severity Severity
	Text     string
}

// String formats message as "<source>(<line>): <severity>: <message>".
func (m Message) String() string {
	return fmt.Sprintf("%s: %s: %s", m.Pos, m.Severity, m.Text)
}

// Reporter collects diagnostics. Input errors never stop compilation, so all
// of them end up here. Not safe for concurrent use.
type Reporter struct {
	log       *zap.Logger
	out       io.Writer
	showDebug bool

	messages []Message
	counts   [SeverityError + 1]int
}

// Option configures Reporter.
type Option func(*Reporter)

// WithWriter copies every accepted message as a line to w.
func WithWriter(w io.Writer) Option {
	return func(r *Reporter) {
		r.out = w
	}
}

// WithDebug enables debug messages, they are dropped otherwise.
func WithDebug(enable bool) Option {
	return func(r *Reporter) {
		r.showDebug = enable
	}
}

func NewReporter(log *zap.Logger, options ...Option) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Reporter{log: log.Named("diag")}
	for _, o := range options {
		o(r)
	}
	return r
}

// Report records message with severity at pos.
func (r *Reporter) Report(sev Severity, pos node.Position, format string, args ...any) {
	if sev == SeverityDebug && !r.showDebug {
		return
	}
	m := Message{Pos: pos, Severity: sev, Text: fmt.Sprintf(format, args...)}
	r.messages = append(r.messages, m)
	if sev.IsValid() {
		r.counts[sev]++
	}

	if ce := r.log.Check(sev.level(), m.Text); ce != nil {
		ce.Write(zap.Stringer("at", m.Pos))
	}
	if r.out != nil {
		fmt.Fprintln(r.out, m.String())
	}
}

func (r *Reporter) Error(pos node.Position, format string, args ...any) {
	r.Report(SeverityError, pos, format, args...)
}

func (r *Reporter) Warning(pos node.Position, format string, args ...any) {
	r.Report(SeverityWarning, pos, format, args...)
}

func (r *Reporter) Info(pos node.Position, format string, args ...any) {
	r.Report(SeverityInfo, pos, format, args...)
}

func (r *Reporter) Debug(pos node.Position, format string, args ...any) {
	r.Report(SeverityDebug, pos, format, args...)
}

// Messages returns accumulated messages in order of arrival.
func (r *Reporter) Messages() []Message {
	return r.messages
}

func (r *Reporter) Count(sev Severity) int {
	if !sev.IsValid() {
		return 0
	}
	return r.counts[sev]
}

func (r *Reporter) ErrorCount() int {
	return r.counts[SeverityError]
}

func (r *Reporter) WarningCount() int {
	return r.counts[SeverityWarning]
}

// Reset forgets accumulated messages.
func (r *Reporter) Reset() {
	r.messages = nil
	r.counts = [SeverityError + 1]int{}
}
