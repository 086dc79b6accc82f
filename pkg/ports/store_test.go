package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/agentlisp/pkg/machine"
	"github.com/aretw0/agentlisp/pkg/ports"
)

// MockStore is an in-memory implementation of StateStore for testing purposes.
type MockStore struct {
	data map[string]*machine.State
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*machine.State),
	}
}

func (m *MockStore) Save(ctx context.Context, sessionID string, state *machine.State) error {
	// Deep copy to simulate serialization
	copied, err := state.Clone()
	if err != nil {
		return err
	}
	m.data[sessionID] = copied
	return nil
}

func (m *MockStore) Load(ctx context.Context, sessionID string) (*machine.State, error) {
	state, ok := m.data[sessionID]
	if !ok {
		return nil, machine.ErrSessionNotFound
	}
	return state.Clone()
}

func (m *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestStateStore_Contract(t *testing.T) {
	// Verifies that the MockStore complies with the StateStore contract.
	// Adapter implementations run the same suite against real backends.
	ports.RunStateStoreContract(t, NewMockStore())
}
