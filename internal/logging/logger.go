// Package logging builds the slog loggers the commands and engine share.
//
// Logs always go to Stderr: Stdout belongs to the program's flow output —
// the interactive prompt, NDJSON events in --json mode, and JSON-RPC frames
// on the MCP stdio transport — and a stray log line there would corrupt it.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates a configured application logger on Stderr.
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a logger that discards everything. The default for the
// engine, runner and session manager when no logger is injected.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
