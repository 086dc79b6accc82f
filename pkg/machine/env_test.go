package machine_test

import (
	"testing"

	"github.com/aretw0/agentlisp/pkg/lang"
	"github.com/aretw0/agentlisp/pkg/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv_ExtendIsImmutable(t *testing.T) {
	program := &lang.Program{Functions: []lang.FunctionDef{
		{Name: "main", Body: lang.IntLit(0)},
	}}
	base := machine.NewEnv(program)

	e1 := base.Extend("x", lang.IntValue(1))
	e2 := e1.Extend("x", lang.IntValue(2))

	v1, err := e1.Lookup("x")
	require.NoError(t, err)
	v2, err := e2.Lookup("x")
	require.NoError(t, err)

	assert.Equal(t, lang.IntValue(1), v1)
	assert.Equal(t, lang.IntValue(2), v2)

	_, err = base.Lookup("x")
	var undef *lang.UndefinedVariableError
	assert.ErrorAs(t, err, &undef)
}

func TestEnv_ExtendMany(t *testing.T) {
	program := &lang.Program{Functions: []lang.FunctionDef{
		{Name: "main", Body: lang.IntLit(0)},
	}}
	base := machine.NewEnv(program)

	t.Run("PairsInOrder", func(t *testing.T) {
		env := base.ExtendMany([]string{"a", "b"}, []lang.Value{lang.IntValue(1), lang.IntValue(2)})
		a, err := env.Lookup("a")
		require.NoError(t, err)
		b, err := env.Lookup("b")
		require.NoError(t, err)
		assert.Equal(t, lang.IntValue(1), a)
		assert.Equal(t, lang.IntValue(2), b)
	})

	t.Run("UnequalLengthsStopAtShorter", func(t *testing.T) {
		env := base.ExtendMany([]string{"a", "b"}, []lang.Value{lang.IntValue(1)})
		_, err := env.Lookup("a")
		assert.NoError(t, err)
		_, err = env.Lookup("b")
		assert.Error(t, err)
	})
}

func TestEnv_FunctionTableIsShared(t *testing.T) {
	program := &lang.Program{Functions: []lang.FunctionDef{
		{Name: "main", Body: lang.IntLit(0)},
		{Name: "helper", Params: []string{"x"}, Body: lang.Var("x")},
	}}
	base := machine.NewEnv(program)
	derived := base.Extend("x", lang.IntValue(1)).Extend("y", lang.IntValue(2))

	fn, err := derived.Function("helper")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, fn.Params)

	_, err = derived.Function("ghost")
	var undef *lang.UndefinedFunctionError
	assert.ErrorAs(t, err, &undef)
}
