package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/agentlisp/pkg/lang"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) WriteText(ctx context.Context, text string) error {
	output := text
	if h.Renderer != nil {
		if rendered, err := h.Renderer(text); err == nil {
			output = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimRight(output, "\n"))
	return err
}

func (h *TextHandler) Notify(ctx context.Context, text string) error {
	_, err := fmt.Fprintf(h.Writer, "[note] %s\n", text)
	return err
}

func (h *TextHandler) ReadInput(ctx context.Context) (string, error) {
	for {
		fmt.Fprint(h.Writer, "> ")

		text, err := h.Reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && text != "" {
				// Last line without trailing newline still counts.
				return h.sanitizeOrRetry(text)
			}
			return "", err
		}

		clean, err := SanitizeInput(strings.TrimSpace(text))
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return clean, nil
	}
}

func (h *TextHandler) sanitizeOrRetry(text string) (string, error) {
	clean, err := SanitizeInput(strings.TrimSpace(text))
	if err != nil {
		return "", err
	}
	return clean, nil
}

func (h *TextHandler) AskUser(ctx context.Context, question string) (string, error) {
	if _, err := fmt.Fprintf(h.Writer, "[ask] %s\n", question); err != nil {
		return "", err
	}
	return h.ReadInput(ctx)
}

func (h *TextHandler) Result(ctx context.Context, v lang.Value) error {
	_, err := fmt.Fprintf(h.Writer, "=> %s\n", v.String())
	return err
}
