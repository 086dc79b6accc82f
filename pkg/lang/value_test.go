package lang_test

import (
	"testing"

	"github.com/aretw0/agentlisp/pkg/lang"
	"github.com/stretchr/testify/assert"
)

func TestValue_Truthy(t *testing.T) {
	assert.False(t, lang.IntValue(0).Truthy())
	assert.True(t, lang.IntValue(1).Truthy())
	assert.True(t, lang.IntValue(-1).Truthy())
	assert.False(t, lang.TextValue("").Truthy())
	assert.True(t, lang.TextValue("x").Truthy())
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "42", lang.IntValue(42).String())
	assert.Equal(t, "-7", lang.IntValue(-7).String())
	assert.Equal(t, "hello", lang.TextValue("hello").String())
	assert.Equal(t, "", lang.TextValue("").String())
}

func TestExpr_Literal(t *testing.T) {
	v, ok := lang.IntLit(3).Literal()
	assert.True(t, ok)
	assert.Equal(t, lang.IntValue(3), v)

	v, ok = lang.StrLit("s").Literal()
	assert.True(t, ok)
	assert.Equal(t, lang.TextValue("s"), v)

	_, ok = lang.Var("x").Literal()
	assert.False(t, ok)
	_, ok = lang.Read().Literal()
	assert.False(t, ok)
}
