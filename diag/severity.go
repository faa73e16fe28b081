package diag

import "go.uber.org/zap/zapcore"

// Severity of a diagnostic message.
// ENUM(debug, info, warning, error)
type Severity int

//go:generate go tool go-enum --marshal --names

func (s Severity) level() zapcore.Level {
	switch s {
	case SeverityDebug:
		return zapcore.DebugLevel
	case SeverityInfo:
		return zapcore.InfoLevel
	case SeverityWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
