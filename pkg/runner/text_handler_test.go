package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/agentlisp/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_WriteText(t *testing.T) {
	var out bytes.Buffer
	h := NewTextHandler(nil, &out)

	require.NoError(t, h.WriteText(context.Background(), "hello\n"))
	assert.Equal(t, "hello\n", out.String())
}

func TestTextHandler_Renderer(t *testing.T) {
	var out bytes.Buffer
	h := NewTextHandler(nil, &out, WithTextHandlerRenderer(func(s string) (string, error) {
		return strings.ToUpper(s), nil
	}))

	require.NoError(t, h.WriteText(context.Background(), "hello"))
	assert.Equal(t, "HELLO\n", out.String())
}

func TestTextHandler_ReadInput(t *testing.T) {
	var out bytes.Buffer
	h := NewTextHandler(strings.NewReader("  padded  \n"), &out)

	got, err := h.ReadInput(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "padded", got)
	assert.Contains(t, out.String(), "> ")
}

func TestTextHandler_ReadInput_LastLineWithoutNewline(t *testing.T) {
	h := NewTextHandler(strings.NewReader("final"), &bytes.Buffer{})

	got, err := h.ReadInput(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "final", got)
}

func TestTextHandler_ReadInput_RetriesOnBadInput(t *testing.T) {
	var out bytes.Buffer
	h := NewTextHandler(strings.NewReader("bad\xff\n, good\n"), &out)

	got, err := h.ReadInput(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ", good", got)
	assert.Contains(t, out.String(), "try again")
}

func TestTextHandler_AskUser(t *testing.T) {
	var out bytes.Buffer
	h := NewTextHandler(strings.NewReader("42\n"), &out)

	got, err := h.AskUser(context.Background(), "the answer?")
	require.NoError(t, err)
	assert.Equal(t, "42", got)
	assert.Contains(t, out.String(), "the answer?")
}

func TestTextHandler_Result(t *testing.T) {
	var out bytes.Buffer
	h := NewTextHandler(nil, &out)

	require.NoError(t, h.Result(context.Background(), lang.IntValue(9)))
	assert.Equal(t, "=> 9\n", out.String())
}
