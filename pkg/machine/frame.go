package machine

import "github.com/aretw0/agentlisp/pkg/lang"

// FrameKind discriminates continuation frame variants.
type FrameKind string

const (
	// FrameIf holds the two branches while the condition is evaluated.
	FrameIf FrameKind = "if"
	// FrameLet holds the bound name, the remaining bindings and the body
	// while one binding's value expression is evaluated.
	FrameLet FrameKind = "let"
	// FrameWrite, FrameTell and FrameAsk carry no payload beyond their
	// kind (FrameAsk's question is the value being computed).
	FrameWrite FrameKind = "write"
	FrameTell  FrameKind = "tell"
	FrameAsk   FrameKind = "ask"
	// FrameCall accumulates evaluated arguments for a pending call.
	FrameCall FrameKind = "call"
)

// Frame is one continuation frame: a record of the work still owed once
// the expression currently under evaluation produces a value. Frames are
// plain serializable data, the explicit stand-in for a native call stack.
type Frame struct {
	Kind FrameKind `json:"kind"`

	// FrameIf branches.
	Then *lang.Expr `json:"then,omitempty"`
	Else *lang.Expr `json:"else,omitempty"`

	// FrameLet: Name receives the value being computed, Remaining are the
	// bindings still to evaluate, Body runs once all bindings are in.
	// FrameCall: Name is the callee.
	Name      string         `json:"name,omitempty"`
	Remaining []lang.Binding `json:"remaining,omitempty"`
	Body      *lang.Expr     `json:"body,omitempty"`

	// FrameCall: arguments evaluated so far and expressions still pending.
	Done    []lang.Value `json:"done,omitempty"`
	Pending []*lang.Expr `json:"pending,omitempty"`
}

// push returns a new stack with f on top. The input slice is copied so that
// stacks are never aliased between two live states.
func push(stack []Frame, f Frame) []Frame {
	next := make([]Frame, len(stack), len(stack)+1)
	copy(next, stack)
	return append(next, f)
}

// pop splits the top frame off the stack. The remainder is a copy for the
// same aliasing reason as push. pop must not be called on an empty stack.
func pop(stack []Frame) (Frame, []Frame) {
	top := stack[len(stack)-1]
	rest := make([]Frame, len(stack)-1)
	copy(rest, stack[:len(stack)-1])
	return top, rest
}
