package machine

import (
	"fmt"

	"github.com/aretw0/agentlisp/pkg/lang"
)

// Placeholder variables the machine binds effect results to. They live in
// a reserved namespace programs have no reason to reference directly.
const (
	ReadResultVar = "__read_result__"
	AskResultVar  = "__ask_result__"
)

// NewInitialState validates the program and builds the starting state:
// main's body, an environment holding only the function table, and an
// empty frame stack.
func NewInitialState(program *lang.Program) (*State, error) {
	if err := program.Validate(); err != nil {
		return nil, err
	}
	return NewComputing(NewEnv(program), program.Main().Body, nil), nil
}

// Step advances the machine by exactly one transition and returns the new
// state. Done and interop states make no further progress on their own:
// Step returns (nil, nil) for both. A blocked state can only be advanced
// through StepWithEffect.
func Step(s *State) (*State, error) {
	if s.Phase != PhaseComputing {
		return nil, nil
	}

	env, expr, stack := s.Env, s.Expr, s.Stack

	// A literal's value is known immediately.
	if v, ok := expr.Literal(); ok {
		return produce(env, v, stack)
	}

	switch expr.Kind {
	case lang.ExprVar:
		v, err := env.Lookup(expr.Name)
		if err != nil {
			return nil, err
		}
		return produce(env, v, stack)

	case lang.ExprIf:
		return NewComputing(env, expr.Cond, push(stack, Frame{
			Kind: FrameIf,
			Then: expr.Then,
			Else: expr.Else,
		})), nil

	case lang.ExprLet:
		if len(expr.Bindings) == 0 {
			return NewComputing(env, expr.Body, stack), nil
		}
		first := expr.Bindings[0]
		return NewComputing(env, first.Value, push(stack, Frame{
			Kind:      FrameLet,
			Name:      first.Name,
			Remaining: expr.Bindings[1:],
			Body:      expr.Body,
		})), nil

	case lang.ExprWrite:
		return NewComputing(env, expr.Arg, push(stack, Frame{Kind: FrameWrite})), nil

	case lang.ExprTell:
		return NewComputing(env, expr.Arg, push(stack, Frame{Kind: FrameTell})), nil

	case lang.ExprAsk:
		return NewComputing(env, expr.Arg, push(stack, Frame{Kind: FrameAsk})), nil

	case lang.ExprRead:
		// Reading is effectful the instant it is reached; there is no
		// operand to evaluate first.
		cont := NewComputing(
			env.Extend(ReadResultVar, lang.TextValue("")),
			lang.Var(ReadResultVar),
			stack,
		)
		return NewInterop(EffectRequest{Kind: EffectRead, TargetVar: ReadResultVar}, cont), nil

	case lang.ExprCall:
		if len(expr.Args) == 0 {
			fn, err := env.Function(expr.Name)
			if err != nil {
				return nil, err
			}
			if fn.Arity() != 0 {
				return nil, &lang.ArityError{Function: expr.Name, Want: fn.Arity(), Got: 0}
			}
			// Flat scoping: the body sees the function table and nothing
			// from the caller.
			return NewComputing(env.fresh(), fn.Body, stack), nil
		}
		return NewComputing(env, expr.Args[0], push(stack, Frame{
			Kind:    FrameCall,
			Name:    expr.Name,
			Pending: expr.Args[1:],
		})), nil
	}

	return nil, fmt.Errorf("unknown expression kind: %s", expr.Kind)
}

// StepWithEffect behaves like Step for non-blocked states. For an interop
// state it consumes the supplied effect result and resumes the
// continuation; with no result it returns (nil, nil), still blocked.
func StepWithEffect(s *State, result *EffectResult) (*State, error) {
	if s.Phase != PhaseInterop {
		return Step(s)
	}
	if result == nil {
		return nil, nil
	}

	cont := s.Cont
	switch s.Effect.Kind {
	case EffectRead, EffectAsk:
		// Bind the result to the request's target variable in the
		// continuation's environment.
		if cont.Phase == PhaseComputing {
			env := cont.Env.Extend(s.Effect.TargetVar, lang.TextValue(result.Text))
			return NewComputing(env, cont.Expr, cont.Stack), nil
		}
		return cont, nil
	default:
		// Write and tell discard the result text; the continuation's next
		// expression was fixed to the empty-string literal when the
		// request was created.
		return cont, nil
	}
}

// produce routes a freshly computed value: with no pending frames the
// evaluation is complete, otherwise the top frame decides what happens.
func produce(env *Env, v lang.Value, stack []Frame) (*State, error) {
	if len(stack) == 0 {
		return NewDone(v), nil
	}
	top, rest := pop(stack)
	return applyFrame(env, top, v, rest)
}

// applyFrame resumes the continuation frame on top of the stack with a
// value.
func applyFrame(env *Env, f Frame, v lang.Value, rest []Frame) (*State, error) {
	switch f.Kind {
	case FrameIf:
		if v.Truthy() {
			return NewComputing(env, f.Then, rest), nil
		}
		return NewComputing(env, f.Else, rest), nil

	case FrameLet:
		// Sequential (let*) semantics: each binding is evaluated in an
		// environment already holding the earlier ones.
		bound := env.Extend(f.Name, v)
		if len(f.Remaining) == 0 {
			return NewComputing(bound, f.Body, rest), nil
		}
		next := f.Remaining[0]
		return NewComputing(bound, next.Value, push(rest, Frame{
			Kind:      FrameLet,
			Name:      next.Name,
			Remaining: f.Remaining[1:],
			Body:      f.Body,
		})), nil

	case FrameWrite:
		cont := NewComputing(env, lang.StrLit(""), rest)
		return NewInterop(EffectRequest{Kind: EffectWrite, Text: v.String()}, cont), nil

	case FrameTell:
		cont := NewComputing(env, lang.StrLit(""), rest)
		return NewInterop(EffectRequest{Kind: EffectTell, Text: v.String()}, cont), nil

	case FrameAsk:
		cont := NewComputing(
			env.Extend(AskResultVar, lang.TextValue("")),
			lang.Var(AskResultVar),
			rest,
		)
		return NewInterop(EffectRequest{
			Kind:      EffectAsk,
			TargetVar: AskResultVar,
			Question:  v.String(),
		}, cont), nil

	case FrameCall:
		done := make([]lang.Value, len(f.Done), len(f.Done)+1)
		copy(done, f.Done)
		done = append(done, v)

		if len(f.Pending) == 0 {
			fn, err := env.Function(f.Name)
			if err != nil {
				return nil, err
			}
			if fn.Arity() != len(done) {
				return nil, &lang.ArityError{Function: f.Name, Want: fn.Arity(), Got: len(done)}
			}
			// Fresh environment, parameters only; the caller's pending
			// frames carry over unchanged, so calls in tail position cost
			// no extra stack depth.
			return NewComputing(env.fresh().ExtendMany(fn.Params, done), fn.Body, rest), nil
		}

		// Remaining arguments evaluate in the caller's environment; the
		// call has not happened yet.
		return NewComputing(env, f.Pending[0], push(rest, Frame{
			Kind:    FrameCall,
			Name:    f.Name,
			Done:    done,
			Pending: f.Pending[1:],
		})), nil
	}

	return nil, fmt.Errorf("unknown frame kind: %s", f.Kind)
}
