package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/agentlisp/pkg/lang"
	"github.com/aretw0/agentlisp/pkg/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore
// implementation adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newSuspended := func() *machine.State {
		env := &machine.Env{Bindings: map[string]lang.Value{"greeting": lang.TextValue("hi")}}
		cont := machine.NewComputing(env, lang.Var(machine.ReadResultVar), nil)
		return machine.NewInterop(
			machine.EffectRequest{Kind: machine.EffectRead, TargetVar: machine.ReadResultVar},
			cont,
		)
	}

	t.Run("Save and Load", func(t *testing.T) {
		state := newSuspended()

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, machine.PhaseInterop, loaded.Phase)
		require.NotNil(t, loaded.Effect)
		assert.Equal(t, machine.EffectRead, loaded.Effect.Kind)
		require.NotNil(t, loaded.Cont)
		assert.Equal(t, lang.TextValue("hi"), loaded.Cont.Env.Bindings["greeting"])
	})

	t.Run("Load is a Copy", func(t *testing.T) {
		state := newSuspended()
		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Cont.Env.Bindings["greeting"] = lang.TextValue("mutated")

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, lang.TextValue("hi"), again.Cont.Env.Bindings["greeting"],
			"mutating a loaded state must not affect the stored one")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, machine.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, newSuspended())
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, machine.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, newSuspended()))
		require.NoError(t, store.Save(ctx, id2, newSuspended()))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
