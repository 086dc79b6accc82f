package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/agentlisp"
	"github.com/aretw0/agentlisp/internal/logging"
	"github.com/aretw0/agentlisp/pkg/machine"
	"github.com/aretw0/agentlisp/pkg/ports"
)

// Runner handles the execution loop of the AgentLisp engine using provided IO.
// It drives states to effect boundaries, persists them, and fulfills each
// effect through an IOHandler strategy (Text vs JSON) or an Oracle.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on
	// Stdin/Stdout is used.
	Handler IOHandler

	// Oracle answers 'ask' effects. If nil, questions fall back to
	// Handler.AskUser.
	Oracle OracleFunc

	// Effects, when set, fulfills every effect programmatically instead of
	// the IOHandler/Oracle path. Handle returning io.EOF suspends the run.
	Effects ports.EffectHandler

	// Logger is used for internal debug logging. If nil, a no-op logger
	// is used.
	Logger *slog.Logger

	// Store is the persistence adapter for durable execution. If nil,
	// sessions are ephemeral.
	Store ports.StateStore

	// SessionID keys persistence. Required if Store is set.
	SessionID string

	// KeepCompleted retains the final state in the store instead of
	// deleting the session on completion.
	KeepCompleted bool

	engine       *agentlisp.Engine
	initialState *machine.State
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Run executes the boundary-resume loop until the program completes.
// It returns the final state, or the suspended state when input ends early
// (EOF); a suspended state that was persisted can be resumed by a later
// Run with the same session ID.
func (r *Runner) Run(ctx context.Context) (*machine.State, error) {
	if r.engine == nil {
		return nil, fmt.Errorf("runner: engine is required (use WithEngine)")
	}
	// With a programmatic effect handler the IOHandler is optional; it is
	// only consulted for the final result if explicitly set.
	handler := r.Handler
	if r.Effects == nil {
		handler = r.resolveHandler()
	}

	state := r.initialState
	if state == nil {
		var err error
		state, err = r.engine.Start()
		if err != nil {
			return nil, fmt.Errorf("failed to create initial state: %w", err)
		}
	}

	transcript := NewTranscript()

	for {
		var err error
		state, err = r.engine.RunToBoundary(ctx, state)
		if err != nil {
			return nil, err
		}

		if err := r.saveState(ctx, state); err != nil {
			return nil, fmt.Errorf("critical persistence error: %w", err)
		}

		if state.Terminal() {
			if handler != nil {
				if err := handler.Result(ctx, *state.Value); err != nil {
					return nil, err
				}
			}
			r.finishSession(ctx)
			return state, nil
		}

		result, err := r.fulfillEffect(ctx, handler, transcript, state.Effect)
		if err != nil {
			if err == io.EOF {
				// Input ended; the suspended state is already persisted.
				r.Logger.Debug("input closed, leaving session suspended",
					"session_id", r.SessionID)
				return state, nil
			}
			return nil, err
		}

		state, err = r.engine.Resume(ctx, state, result)
		if err != nil {
			return nil, err
		}
	}
}

// fulfillEffect resolves a single effect request to the text the program
// resumes with, preferring the programmatic Effects handler over IO.
func (r *Runner) fulfillEffect(
	ctx context.Context,
	handler IOHandler,
	transcript *Transcript,
	req *machine.EffectRequest,
) (string, error) {
	if r.Effects != nil {
		res, err := r.Effects.Handle(ctx, req)
		if err != nil {
			return "", err
		}
		if res == nil {
			return "", nil
		}
		return res.Text, nil
	}
	return r.dispatchEffect(ctx, handler, transcript, req)
}

// dispatchEffect fulfills a single effect request and returns the text the
// program resumes with.
func (r *Runner) dispatchEffect(
	ctx context.Context,
	handler IOHandler,
	transcript *Transcript,
	req *machine.EffectRequest,
) (string, error) {
	switch req.Kind {
	case machine.EffectWrite:
		return "", handler.WriteText(ctx, req.Text)

	case machine.EffectTell:
		transcript.Tell(req.Text)
		return "", handler.Notify(ctx, req.Text)

	case machine.EffectRead:
		return handler.ReadInput(ctx)

	case machine.EffectAsk:
		transcript.Question(req.Question)
		answer, err := r.consultOracle(ctx, handler, transcript, req.Question)
		if err != nil {
			return "", err
		}
		transcript.Reply(answer)
		return answer, nil
	}

	return "", fmt.Errorf("unknown effect kind: %s", req.Kind)
}

func (r *Runner) consultOracle(
	ctx context.Context,
	handler IOHandler,
	transcript *Transcript,
	question string,
) (string, error) {
	if r.Oracle != nil {
		answer, err := r.Oracle(ctx, transcript.Messages(), question)
		if err != nil {
			return "", fmt.Errorf("oracle error: %w", err)
		}
		return answer, nil
	}
	return handler.AskUser(ctx, question)
}

func (r *Runner) saveState(ctx context.Context, state *machine.State) error {
	if r.Store != nil && r.SessionID != "" {
		if err := r.Store.Save(ctx, r.SessionID, state); err != nil {
			return err
		}
		r.Logger.Debug("state saved", "session_id", r.SessionID, "phase", state.Phase)
	}
	return nil
}

// finishSession removes the completed session from the store unless the
// runner is configured to keep it.
func (r *Runner) finishSession(ctx context.Context) {
	if r.Store == nil || r.SessionID == "" || r.KeepCompleted {
		return
	}
	if err := r.Store.Delete(ctx, r.SessionID); err != nil {
		r.Logger.Warn("failed to delete completed session",
			"session_id", r.SessionID, "err", err)
	}
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	// Memoize to prevent re-wrapping Stdin on subsequent Run() calls.
	r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	return r.Handler
}
