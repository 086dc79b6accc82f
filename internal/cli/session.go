package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/agentlisp/internal/presentation/tui"
	"github.com/aretw0/agentlisp/pkg/runner"
)

// RunSession executes a single program session.
func RunSession(opts RunOptions, cfg Config) error {
	logger := createLogger(opts.Debug, cfg.LogLevel)
	quiet := opts.JSON || opts.Headless

	if !opts.JSON && !opts.Headless && !opts.Plain && !cfg.Plain && stdoutIsTerminal() {
		tui.PrintBanner()
	}

	engine, err := createEngine(opts, logger)
	if err != nil {
		return err
	}

	// Setup signal handling
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	rOpts := createRunnerOptions(logger, cfg, opts)
	rOpts = append(rOpts, runner.WithEngine(engine))
	if opts.KeepCompleted {
		rOpts = append(rOpts, runner.WithKeepCompleted(true))
	}

	// Setup Persistence
	cleanup := func() {}
	if opts.SessionID != "" {
		manager, c, err := BuildManager(cfg, engine, logger)
		if err != nil {
			return err
		}
		cleanup = c

		state, loaded, err := manager.LoadOrStart(sigCtx, opts.SessionID, engine.Start)
		if err != nil {
			cleanup()
			return fmt.Errorf("failed to init session: %w", err)
		}

		logSessionStatus(logger, opts.SessionID, state.Describe(), loaded, quiet)
		rOpts = append(rOpts, runner.WithStore(manager.Store()), runner.WithInitialState(state))
	}
	defer cleanup()

	r := runner.NewRunner(rOpts...)

	// Execute
	finalState, runErr := r.Run(sigCtx)

	position := "starting"
	if finalState != nil {
		position = finalState.Describe()
	}

	// If context was canceled (signal received), ensure runErr reflects it if it doesn't already
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}

	logCompletion(position, runErr, quiet, sigCtx.Signal())

	return handleExecutionError(runErr)
}
