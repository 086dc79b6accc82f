package machine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/agentlisp/pkg/lang"
)

// ErrSessionNotFound is returned by state stores when a session ID does not
// exist.
var ErrSessionNotFound = errors.New("session not found")

// Phase discriminates the three machine states.
type Phase string

const (
	// PhaseComputing is work in progress: an expression, an environment
	// and a stack of pending frames.
	PhaseComputing Phase = "computing"
	// PhaseInterop is a suspension: the machine is blocked on an external
	// effect and can only proceed once a result is supplied.
	PhaseInterop Phase = "interop"
	// PhaseDone is terminal and holds the program's final value.
	PhaseDone Phase = "done"
)

// EffectKind discriminates the closed set of effect requests.
type EffectKind string

const (
	EffectRead  EffectKind = "read"
	EffectWrite EffectKind = "write"
	EffectTell  EffectKind = "tell"
	EffectAsk   EffectKind = "ask"
)

// EffectRequest describes what the machine needs from the host. Hosts must
// handle the set exhaustively; how they obtain the result text (prompting a
// user, printing, querying an oracle) is entirely their policy.
type EffectRequest struct {
	Kind EffectKind `json:"kind"`

	// TargetVar is the placeholder variable the result is bound to
	// (read and ask only).
	TargetVar string `json:"target_var,omitempty"`

	// Text is the outgoing payload (write and tell only).
	Text string `json:"text,omitempty"`

	// Question is the stringified operand of ask.
	Question string `json:"question,omitempty"`
}

// EffectResult carries the host's answer to an effect request. For write
// and tell the text is ignored; the continuation was already fixed when the
// request was created.
type EffectResult struct {
	Text string `json:"text"`
}

// State is one snapshot of an evaluation. It is replaced, never mutated:
// each transition produces a fresh State and the machine holds at most one
// live State per evaluation. Together with the program source it is
// sufficient to resume from any point, in any process.
type State struct {
	Phase Phase `json:"phase"`

	// PhaseComputing.
	Env   *Env       `json:"env,omitempty"`
	Expr  *lang.Expr `json:"expr,omitempty"`
	Stack []Frame    `json:"stack,omitempty"`

	// PhaseInterop. Cont is the state to resume once the effect's result
	// is known, normally a computing state.
	Effect *EffectRequest `json:"effect,omitempty"`
	Cont   *State         `json:"cont,omitempty"`

	// PhaseDone.
	Value *lang.Value `json:"value,omitempty"`
}

// NewComputing builds a work-in-progress state.
func NewComputing(env *Env, expr *lang.Expr, stack []Frame) *State {
	return &State{Phase: PhaseComputing, Env: env, Expr: expr, Stack: stack}
}

// NewInterop builds a suspended state.
func NewInterop(req EffectRequest, cont *State) *State {
	return &State{Phase: PhaseInterop, Effect: &req, Cont: cont}
}

// NewDone builds a terminal state.
func NewDone(v lang.Value) *State {
	return &State{Phase: PhaseDone, Value: &v}
}

// Terminal reports whether the evaluation has completed.
func (s *State) Terminal() bool { return s.Phase == PhaseDone }

// Blocked reports whether the machine is waiting on an effect result.
func (s *State) Blocked() bool { return s.Phase == PhaseInterop }

// Describe returns a short human-readable summary, used by session
// tooling and adapters when presenting a state to a host or user.
func (s *State) Describe() string {
	switch s.Phase {
	case PhaseDone:
		return fmt.Sprintf("completed with result: %s", s.Value.String())
	case PhaseInterop:
		switch s.Effect.Kind {
		case EffectRead:
			return fmt.Sprintf("waiting for input (binds %q)", s.Effect.TargetVar)
		case EffectWrite:
			return fmt.Sprintf("writing output: %q", s.Effect.Text)
		case EffectTell:
			return fmt.Sprintf("adding to conversation: %q", s.Effect.Text)
		case EffectAsk:
			return fmt.Sprintf("asking oracle: %q", s.Effect.Question)
		}
		return "waiting for effect result"
	case PhaseComputing:
		return fmt.Sprintf("computing (%d pending frames)", len(s.Stack))
	}
	return "unknown state"
}

// Clone returns a deep copy via a JSON round-trip, the same representation
// stores use. The clone is dehydrated; call Hydrate before stepping it.
func (s *State) Clone() (*State, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	var out State
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &out, nil
}

// Hydrate re-attaches the program's function table to every environment
// reachable from s. Deserialized states carry bindings only; they must be
// hydrated against the same program before stepping.
func Hydrate(s *State, program *lang.Program) {
	table := program.Table()
	for cur := s; cur != nil; cur = cur.Cont {
		if cur.Env != nil {
			if cur.Env.Bindings == nil {
				cur.Env.Bindings = make(map[string]lang.Value)
			}
			cur.Env.attach(table)
		}
	}
}
