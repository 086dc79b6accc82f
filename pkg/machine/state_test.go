package machine_test

import (
	"testing"

	"github.com/aretw0/agentlisp/pkg/lang"
	"github.com/aretw0/agentlisp/pkg/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A suspended state must survive a serialization round-trip and, after
// hydration against the same program, resume exactly where it stopped.
// This is the "resumed much later, by a different caller" property.
func TestState_SerializeHydrateResume(t *testing.T) {
	// (let ((greeting "hi") (name (read))) name)
	program := mainProgram(lang.Let(
		[]lang.Binding{
			lang.Bind("greeting", lang.StrLit("hi")),
			lang.Bind("name", lang.Read()),
		},
		lang.Var("name"),
	))

	s, err := machine.NewInitialState(program)
	require.NoError(t, err)
	s = runToBoundary(t, s)
	require.Equal(t, machine.PhaseInterop, s.Phase)
	require.Equal(t, machine.EffectRead, s.Effect.Kind)

	// Round-trip through JSON, as a store would.
	restored, err := s.Clone()
	require.NoError(t, err)
	machine.Hydrate(restored, program)

	restored, err = machine.StepWithEffect(restored, &machine.EffectResult{Text: "Ada"})
	require.NoError(t, err)
	restored = runToBoundary(t, restored)

	require.Equal(t, machine.PhaseDone, restored.Phase)
	assert.Equal(t, lang.TextValue("Ada"), *restored.Value)
}

func TestState_CloneIsDeep(t *testing.T) {
	program := mainProgram(lang.Let(
		[]lang.Binding{lang.Bind("x", lang.IntLit(1))},
		lang.Read(),
	))
	s, err := machine.NewInitialState(program)
	require.NoError(t, err)
	s = runToBoundary(t, s)
	require.Equal(t, machine.PhaseInterop, s.Phase)

	clone, err := s.Clone()
	require.NoError(t, err)
	machine.Hydrate(clone, program)

	// Mutating the clone's continuation bindings must not leak into the
	// original.
	clone.Cont.Env.Bindings["x"] = lang.IntValue(99)
	orig, err := s.Cont.Env.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, lang.IntValue(1), orig)
}

func TestState_Describe(t *testing.T) {
	done := machine.NewDone(lang.IntValue(42))
	assert.Contains(t, done.Describe(), "42")

	s, err := machine.NewInitialState(mainProgram(lang.Ask(lang.StrLit("why?"))))
	require.NoError(t, err)
	assert.Contains(t, s.Describe(), "computing")

	s = runToBoundary(t, s)
	assert.Contains(t, s.Describe(), "why?")
}
