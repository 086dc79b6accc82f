package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/agentlisp/pkg/lang"
)

// Event is a single JSON-Lines message the JSONHandler emits.
type Event struct {
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	Question string      `json:"question,omitempty"`
	Value    *lang.Value `json:"value,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines
// communication. Each effect becomes one line on the writer; inputs are
// read line-based from the reader.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) WriteText(ctx context.Context, text string) error {
	return h.Encoder.Encode(Event{Type: "write", Text: text})
}

func (h *JSONHandler) Notify(ctx context.Context, text string) error {
	return h.Encoder.Encode(Event{Type: "tell", Text: text})
}

func (h *JSONHandler) ReadInput(ctx context.Context) (string, error) {
	if err := h.Encoder.Encode(Event{Type: "read"}); err != nil {
		return "", err
	}
	return h.readLine()
}

func (h *JSONHandler) AskUser(ctx context.Context, question string) (string, error) {
	if err := h.Encoder.Encode(Event{Type: "ask", Question: question}); err != nil {
		return "", err
	}
	return h.readLine()
}

func (h *JSONHandler) Result(ctx context.Context, v lang.Value) error {
	return h.Encoder.Encode(Event{Type: "result", Value: &v})
}

// readLine reads one line and unquotes it if the caller sent a JSON
// string; plain text passes through as-is.
func (h *JSONHandler) readLine() (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && text == "" {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return val, nil
	}
	return text, nil
}
