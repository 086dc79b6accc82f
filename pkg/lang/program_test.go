package lang_test

import (
	"testing"

	"github.com/aretw0/agentlisp/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgram_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		p := &lang.Program{Functions: []lang.FunctionDef{
			{Name: "main", Body: lang.IntLit(1)},
			{Name: "helper", Params: []string{"x"}, Body: lang.Var("x")},
		}}
		assert.NoError(t, p.Validate())
	})

	t.Run("Empty", func(t *testing.T) {
		assert.ErrorIs(t, (&lang.Program{}).Validate(), lang.ErrNoFunctions)
	})

	t.Run("NoMain", func(t *testing.T) {
		p := &lang.Program{Functions: []lang.FunctionDef{
			{Name: "helper", Body: lang.IntLit(1)},
		}}
		assert.ErrorIs(t, p.Validate(), lang.ErrNoMain)
	})

	t.Run("MainWithParams", func(t *testing.T) {
		p := &lang.Program{Functions: []lang.FunctionDef{
			{Name: "main", Params: []string{"x"}, Body: lang.Var("x")},
		}}
		assert.ErrorIs(t, p.Validate(), lang.ErrMainArity)
	})

	t.Run("DuplicateNamesRejected", func(t *testing.T) {
		p := &lang.Program{Functions: []lang.FunctionDef{
			{Name: "main", Body: lang.IntLit(1)},
			{Name: "helper", Body: lang.IntLit(2)},
			{Name: "helper", Body: lang.IntLit(3)},
		}}
		var dup *lang.DuplicateFunctionError
		require.ErrorAs(t, p.Validate(), &dup)
		assert.Equal(t, "helper", dup.Name)
	})
}

func TestProgram_Lookups(t *testing.T) {
	p := &lang.Program{Functions: []lang.FunctionDef{
		{Name: "main", Body: lang.IntLit(1)},
		{Name: "helper", Params: []string{"a", "b"}, Body: lang.Var("a")},
	}}

	require.NotNil(t, p.Main())
	assert.Equal(t, "main", p.Main().Name)

	fn := p.Function("helper")
	require.NotNil(t, fn)
	assert.Equal(t, 2, fn.Arity())
	assert.Nil(t, p.Function("ghost"))

	table := p.Table()
	assert.Len(t, table, 2)
	assert.Equal(t, []string{"a", "b"}, table["helper"].Params)
}
