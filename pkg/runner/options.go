package runner

import (
	"log/slog"

	"github.com/aretw0/agentlisp"
	"github.com/aretw0/agentlisp/pkg/machine"
	"github.com/aretw0/agentlisp/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithEngine configures the engine the Runner drives. Required.
func WithEngine(engine *agentlisp.Engine) Option {
	return func(r *Runner) {
		r.engine = engine
	}
}

// WithHandler configures a custom IOHandler.
func WithHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithEffectHandler routes every effect through the given handler instead
// of the IOHandler/Oracle strategies. Returning io.EOF from Handle leaves
// the session suspended, the same way closed input does.
func WithEffectHandler(h ports.EffectHandler) Option {
	return func(r *Runner) {
		r.Effects = h
	}
}

// WithOracle configures the agent that answers 'ask' effects.
func WithOracle(oracle OracleFunc) Option {
	return func(r *Runner) {
		r.Oracle = oracle
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithStore configures the StateStore for persistence.
func WithStore(store ports.StateStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithSessionID sets the session ID for persistence context.
// This is required if WithStore is used.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithKeepCompleted retains completed sessions in the store.
func WithKeepCompleted(keep bool) Option {
	return func(r *Runner) {
		r.KeepCompleted = keep
	}
}

// WithInitialState configures the initial state for the Runner, typically
// one loaded from a store. If not provided, the Runner calls Engine.Start.
func WithInitialState(state *machine.State) Option {
	return func(r *Runner) {
		r.initialState = state
	}
}
