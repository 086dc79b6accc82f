package agentlisp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/agentlisp/internal/compiler"
	"github.com/aretw0/agentlisp/internal/logging"
	"github.com/aretw0/agentlisp/pkg/lang"
	"github.com/aretw0/agentlisp/pkg/machine"
	"github.com/aretw0/agentlisp/pkg/observability"
)

// Version is the library version, surfaced by the CLI and the adapters.
const Version = "0.1.0"

// ErrStepLimit is returned by RunToBoundary when a run segment exceeds the
// configured step budget without reaching an effect boundary or completing.
// It usually means the program loops without performing effects.
var ErrStepLimit = fmt.Errorf("step limit exceeded")

// Engine is the high-level entry point for the AgentLisp library.
// It holds the compiled program and drives machine states; all session
// state lives in the *machine.State values that flow through its methods.
type Engine struct {
	program   *lang.Program
	logger    *slog.Logger
	hooks     Hooks
	metrics   *observability.Metrics
	stepLimit int
	Name      string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMetrics wires Prometheus collectors into the engine's run loop.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithStepLimit caps the number of transitions a single RunToBoundary call
// may perform (default: 1_000_000). Zero or negative disables the cap.
func WithStepLimit(n int) Option {
	return func(e *Engine) {
		e.stepLimit = n
	}
}

// New initializes an Engine from a program source file.
func New(path string, opts ...Option) (*Engine, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return newEngine(string(src), name, opts)
}

// NewFromSource initializes an Engine from in-memory source text.
func NewFromSource(src string, opts ...Option) (*Engine, error) {
	return newEngine(src, "", opts)
}

func newEngine(src, name string, opts []Option) (*Engine, error) {
	program, err := compiler.ParseProgram(src)
	if err != nil {
		return nil, err
	}
	if err := program.Validate(); err != nil {
		return nil, err
	}

	eng := &Engine{
		program:   program,
		stepLimit: 1_000_000,
		Name:      name,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("program", eng.Name)
	}

	return eng, nil
}

// Program returns the validated program, for introspection and
// visualization tools.
func (e *Engine) Program() *lang.Program {
	return e.program
}

// Start returns the initial state: main's body under an environment that
// binds no variables.
func (e *Engine) Start() (*machine.State, error) {
	return machine.NewInitialState(e.program)
}

// Step advances the state by a single transition. Suspended and completed
// states are returned unchanged.
func (e *Engine) Step(ctx context.Context, state *machine.State) (*machine.State, error) {
	if state.Blocked() || state.Terminal() {
		return state, nil
	}

	next, err := machine.Step(state)
	if err != nil {
		return nil, err
	}
	e.observeStep(ctx, state)
	return next, nil
}

// Resume feeds the host's answer to a suspended state's pending effect.
func (e *Engine) Resume(ctx context.Context, state *machine.State, result string) (*machine.State, error) {
	if !state.Blocked() {
		return nil, fmt.Errorf("cannot resume: state is not suspended on an effect")
	}

	e.logger.DebugContext(ctx, "resuming effect",
		"kind", state.Effect.Kind,
		"result_len", len(result))

	return machine.StepWithEffect(state, &machine.EffectResult{Text: result})
}

// RunToBoundary steps until the state suspends on an effect or completes.
// It honors context cancellation between transitions.
func (e *Engine) RunToBoundary(ctx context.Context, state *machine.State) (*machine.State, error) {
	start := time.Now()
	steps := 0

	for !state.Blocked() && !state.Terminal() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.stepLimit > 0 && steps >= e.stepLimit {
			return nil, fmt.Errorf("%w after %d transitions", ErrStepLimit, steps)
		}

		next, err := machine.Step(state)
		if err != nil {
			return nil, err
		}
		e.observeStep(ctx, state)
		state = next
		steps++
	}

	if e.metrics != nil {
		e.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}

	switch {
	case state.Blocked():
		e.observeEffect(ctx, state.Effect)
	case state.Terminal():
		e.observeDone(ctx, *state.Value)
	}

	e.logger.DebugContext(ctx, "reached boundary",
		"phase", state.Phase,
		"steps", steps)

	return state, nil
}

// Hydrate reattaches the program's function table to a state loaded from a
// store. States must be hydrated before they are stepped.
func (e *Engine) Hydrate(state *machine.State) {
	machine.Hydrate(state, e.program)
}

func (e *Engine) observeStep(ctx context.Context, before *machine.State) {
	if e.metrics != nil {
		e.metrics.Steps.WithLabelValues(string(before.Expr.Kind)).Inc()
	}
	if e.hooks.OnStep != nil {
		e.hooks.OnStep(ctx, &StepEvent{
			Timestamp: time.Now(),
			Phase:     before.Phase,
			ExprKind:  before.Expr.Kind,
			Depth:     len(before.Stack),
		})
	}
}

func (e *Engine) observeEffect(ctx context.Context, req *machine.EffectRequest) {
	if e.metrics != nil {
		e.metrics.Effects.WithLabelValues(string(req.Kind)).Inc()
	}
	if e.hooks.OnEffect != nil {
		e.hooks.OnEffect(ctx, &EffectEvent{
			Timestamp: time.Now(),
			Kind:      req.Kind,
			Text:      req.Text,
			Question:  req.Question,
		})
	}
}

func (e *Engine) observeDone(ctx context.Context, v lang.Value) {
	if e.hooks.OnDone != nil {
		e.hooks.OnDone(ctx, &DoneEvent{
			Timestamp: time.Now(),
			Value:     v,
		})
	}
}
