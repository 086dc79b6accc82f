package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/agentlisp/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEvents(t *testing.T, raw string) []Event {
	t.Helper()
	var events []Event
	dec := json.NewDecoder(strings.NewReader(raw))
	for dec.More() {
		var ev Event
		require.NoError(t, dec.Decode(&ev))
		events = append(events, ev)
	}
	return events
}

func TestJSONHandler_EmitsEvents(t *testing.T) {
	var out bytes.Buffer
	h := NewJSONHandler(strings.NewReader(""), &out)
	ctx := context.Background()

	require.NoError(t, h.WriteText(ctx, "hello"))
	require.NoError(t, h.Notify(ctx, "fyi"))
	require.NoError(t, h.Result(ctx, lang.IntValue(3)))

	events := decodeEvents(t, out.String())
	require.Len(t, events, 3)
	assert.Equal(t, Event{Type: "write", Text: "hello"}, events[0])
	assert.Equal(t, Event{Type: "tell", Text: "fyi"}, events[1])
	assert.Equal(t, "result", events[2].Type)
	require.NotNil(t, events[2].Value)
	assert.Equal(t, lang.IntValue(3), *events[2].Value)
}

func TestJSONHandler_ReadInput(t *testing.T) {
	t.Run("PlainText", func(t *testing.T) {
		var out bytes.Buffer
		h := NewJSONHandler(strings.NewReader("plain answer\n"), &out)

		got, err := h.ReadInput(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "plain answer", got)

		events := decodeEvents(t, out.String())
		require.Len(t, events, 1)
		assert.Equal(t, "read", events[0].Type)
	})

	t.Run("JSONString", func(t *testing.T) {
		h := NewJSONHandler(strings.NewReader("\"quoted\\nanswer\"\n"), &bytes.Buffer{})

		got, err := h.ReadInput(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "quoted\nanswer", got)
	})
}

func TestJSONHandler_AskUser(t *testing.T) {
	var out bytes.Buffer
	h := NewJSONHandler(strings.NewReader("yes\n"), &out)

	got, err := h.AskUser(context.Background(), "ready?")
	require.NoError(t, err)
	assert.Equal(t, "yes", got)

	events := decodeEvents(t, out.String())
	require.Len(t, events, 1)
	assert.Equal(t, Event{Type: "ask", Question: "ready?"}, events[0])
}
