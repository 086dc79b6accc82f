package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_CleanPassthrough(t *testing.T) {
	got, err := SanitizeInput("hello world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
}

func TestSanitizeInput_StripsControlChars(t *testing.T) {
	got, err := SanitizeInput("safe\x1b[31mred\x00null\x07bell")
	require.NoError(t, err)
	assert.Equal(t, "safe[31mrednullbell", got)
}

func TestSanitizeInput_PreservesWhitespaceControls(t *testing.T) {
	got, err := SanitizeInput("line1\nline2\ttabbed\r")
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\ttabbed\r", got)
}

func TestSanitizeInput_RejectsOversized(t *testing.T) {
	big := strings.Repeat("a", DefaultMaxInputSize+1)
	_, err := SanitizeInput(big)
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestSanitizeInput_SizeOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")
	_, err := SanitizeInput(strings.Repeat("a", 11))
	assert.ErrorIs(t, err, ErrInputTooLarge)

	got, err := SanitizeInput("short")
	require.NoError(t, err)
	assert.Equal(t, "short", got)
}

func TestSanitizeInput_RejectsInvalidUTF8(t *testing.T) {
	_, err := SanitizeInput("bad\xff")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
