package runner

import (
	"context"

	"github.com/aretw0/agentlisp/pkg/lang"
)

// IOHandler defines the strategy for surfacing effects to the host.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// WriteText presents program output to the user.
	WriteText(ctx context.Context, text string) error

	// Notify presents a status note to the user. Notes are informational;
	// the program does not wait for a reaction.
	Notify(ctx context.Context, text string) error

	// ReadInput reads a line of input from the user.
	ReadInput(ctx context.Context) (string, error)

	// AskUser poses a question and reads the answer. The runner falls back
	// to this when no Oracle is configured.
	AskUser(ctx context.Context, question string) (string, error)

	// Result presents the program's final value.
	Result(ctx context.Context, v lang.Value) error
}

// ContentRenderer is a function that transforms content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
