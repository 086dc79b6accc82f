package ports

import (
	"context"

	"github.com/aretw0/agentlisp/pkg/machine"
)

// StateStore defines the interface for persisting execution state.
// This allows for durable execution, enabling "Stop & Resume" workflows.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *machine.State) error

	// Load retrieves the state for a given session ID.
	// Returns machine.ErrSessionNotFound if the session does not exist.
	// Loaded states carry no function table; callers hydrate them before
	// stepping.
	Load(ctx context.Context, sessionID string) (*machine.State, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all persisted sessions.
	List(ctx context.Context) ([]string, error)
}
