//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// colorOutput reports if console stream could be colorized.
func colorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd())) && os.Getenv("NO_COLOR") == ""
}
