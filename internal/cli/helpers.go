package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/aretw0/agentlisp"
	"github.com/aretw0/agentlisp/internal/logging"
	"github.com/aretw0/agentlisp/internal/presentation/tui"
	"github.com/aretw0/agentlisp/pkg/runner"
	"golang.org/x/term"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout flow UI).
// An empty level keeps the logger silent.
func createLogger(debug bool, level string) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	if level == "" {
		return logging.NewNop()
	}
	return logging.New(parseLogLevel(level))
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

func logSessionStatus(logger *slog.Logger, sessionID, position string, loaded, quiet bool) {
	if loaded {
		logger.Info("Session Resumed", "session_id", sessionID, "position", position)
		if !quiet {
			printSystemMessage("Resuming session '%s' (%s)...", sessionID, position)
		}
	} else if sessionID != "" {
		logger.Info("Session Created", "session_id", sessionID)
		if !quiet {
			printSystemMessage("Session '%s' active.", sessionID)
		}
	}
}

// stdoutIsTerminal reports whether stdout is attached to a TTY. Markdown
// rendering and the banner are skipped when piping.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// createRunnerOptions prepares the functional options for the Runner.
func createRunnerOptions(logger *slog.Logger, cfg Config, opts RunOptions) []runner.Option {
	rOpts := []runner.Option{
		runner.WithLogger(logger),
	}

	if opts.SessionID != "" {
		rOpts = append(rOpts, runner.WithSessionID(opts.SessionID))
	}

	if opts.JSON {
		rOpts = append(rOpts, runner.WithHandler(runner.NewJSONHandler(os.Stdin, os.Stdout)))
	} else if opts.Headless {
		// No input source: the program prints its output and suspends at the
		// first read/ask, leaving the session resumable.
		rOpts = append(rOpts, runner.WithHandler(
			runner.NewTextHandler(strings.NewReader(""), os.Stdout)))
	} else if !cfg.Plain && !opts.Plain && stdoutIsTerminal() {
		rOpts = append(rOpts, runner.WithHandler(
			runner.NewTextHandler(os.Stdin, os.Stdout,
				runner.WithTextHandlerRenderer(tui.NewRenderer()))))
	}

	return rOpts
}

func createDebugHooks(logger *slog.Logger) agentlisp.Hooks {
	return agentlisp.Hooks{
		OnStep: func(ctx context.Context, e *agentlisp.StepEvent) {
			logger.Debug("Step", "expr", e.ExprKind, "depth", e.Depth)
		},
		OnEffect: func(ctx context.Context, e *agentlisp.EffectEvent) {
			logger.Debug("Effect Boundary", "kind", e.Kind, "text", e.Text, "question", e.Question)
		},
		OnDone: func(ctx context.Context, e *agentlisp.DoneEvent) {
			logger.Debug("Program Done", "value", e.Value.String())
		},
	}
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF) ||
		(errors.Unwrap(err) != nil && isInterrupted(errors.Unwrap(err)))
}

func handleExecutionError(err error) error {
	if err == nil {
		return nil
	}
	if isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

func logCompletion(position string, err error, quiet bool, sig os.Signal) {
	if quiet {
		return
	}
	if err == nil {
		printSystemMessage("Finished: %s", position)
		return
	}

	if isInterrupted(err) {
		if sig == os.Interrupt {
			fmt.Printf("[CTRL+C]\n")
			printSystemMessage("Interrupted while %s.", position)
		} else if sig != nil {
			fmt.Printf("\n")
			printSystemMessage("Terminated while %s.", position)
		} else {
			fmt.Printf("\n")
			printSystemMessage("Suspended while %s.", position)
		}
	}
}
