package ports

import (
	"context"

	"github.com/aretw0/agentlisp/pkg/lang"
	"github.com/aretw0/agentlisp/pkg/machine"
)

// Evaluator defines the interface for evaluator cores that do not maintain
// internal state. States flow in and out of every call, so adapters
// (e.g., HTTP, MCP) can persist them externally and resume per-request.
type Evaluator interface {
	// Start returns the initial state for the program's main function.
	Start() (*machine.State, error)

	// Step advances the state by a single transition. A state suspended on
	// an effect does not move until Resume supplies the result.
	Step(ctx context.Context, state *machine.State) (*machine.State, error)

	// Resume feeds the host's answer to a suspended state's pending effect
	// and returns the continuation state.
	Resume(ctx context.Context, state *machine.State, result string) (*machine.State, error)

	// RunToBoundary steps until the state suspends on an effect or
	// completes.
	RunToBoundary(ctx context.Context, state *machine.State) (*machine.State, error)

	// Hydrate reattaches the program's function table to a state that was
	// deserialized from a store.
	Hydrate(state *machine.State)

	// Program returns the validated program this evaluator runs, for
	// introspection and visualization tools.
	Program() *lang.Program
}
