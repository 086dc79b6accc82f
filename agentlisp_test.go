package agentlisp_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/agentlisp"
	"github.com/aretw0/agentlisp/pkg/lang"
	"github.com/aretw0/agentlisp/pkg/machine"
	"github.com/aretw0/agentlisp/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greeterSrc = `
(defun main ()
  (let ((name (read)))
    (write (greeting name))))

(defun greeting (who) who)
`

func TestEngine_ReadWriteRoundTrip(t *testing.T) {
	eng, err := agentlisp.NewFromSource(greeterSrc)
	require.NoError(t, err)

	ctx := context.Background()
	state, err := eng.Start()
	require.NoError(t, err)

	// First boundary: the program wants input.
	state, err = eng.RunToBoundary(ctx, state)
	require.NoError(t, err)
	require.True(t, state.Blocked())
	assert.Equal(t, machine.EffectRead, state.Effect.Kind)

	state, err = eng.Resume(ctx, state, "Ada")
	require.NoError(t, err)

	// Second boundary: the program wants to print what it read.
	state, err = eng.RunToBoundary(ctx, state)
	require.NoError(t, err)
	require.True(t, state.Blocked())
	assert.Equal(t, machine.EffectWrite, state.Effect.Kind)
	assert.Equal(t, "Ada", state.Effect.Text)

	state, err = eng.Resume(ctx, state, "")
	require.NoError(t, err)
	state, err = eng.RunToBoundary(ctx, state)
	require.NoError(t, err)
	require.True(t, state.Terminal())
	assert.Equal(t, lang.TextValue(""), *state.Value)
}

func TestEngine_New_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.alisp")
	require.NoError(t, os.WriteFile(path, []byte(`(defun main () 42)`), 0o644))

	eng, err := agentlisp.New(path)
	require.NoError(t, err)
	assert.Equal(t, "answer", eng.Name)

	state, err := eng.Start()
	require.NoError(t, err)
	state, err = eng.RunToBoundary(context.Background(), state)
	require.NoError(t, err)
	require.True(t, state.Terminal())
	assert.Equal(t, lang.IntValue(42), *state.Value)
}

func TestEngine_SourceErrors(t *testing.T) {
	t.Run("ParseError", func(t *testing.T) {
		_, err := agentlisp.NewFromSource(`(defun main ( 1)`)
		assert.Error(t, err)
	})

	t.Run("NoMain", func(t *testing.T) {
		_, err := agentlisp.NewFromSource(`(defun helper () 1)`)
		assert.ErrorIs(t, err, lang.ErrNoMain)
	})

	t.Run("DuplicateFunction", func(t *testing.T) {
		_, err := agentlisp.NewFromSource(`
			(defun main () 1)
			(defun f () 1)
			(defun f () 2)
		`)
		var dup *lang.DuplicateFunctionError
		assert.ErrorAs(t, err, &dup)
	})
}

func TestEngine_StepLimit(t *testing.T) {
	// Effect-free recursion never reaches a boundary; the limit is the only
	// way out.
	eng, err := agentlisp.NewFromSource(`
		(defun main () (spin 1))
		(defun spin (x) (spin x))
	`, agentlisp.WithStepLimit(100))
	require.NoError(t, err)

	state, err := eng.Start()
	require.NoError(t, err)
	_, err = eng.RunToBoundary(context.Background(), state)
	assert.ErrorIs(t, err, agentlisp.ErrStepLimit)
}

func TestEngine_ContextCancellation(t *testing.T) {
	eng, err := agentlisp.NewFromSource(`
		(defun main () (spin 1))
		(defun spin (x) (spin x))
	`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := eng.Start()
	require.NoError(t, err)
	_, err = eng.RunToBoundary(ctx, state)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_ResumeRequiresSuspension(t *testing.T) {
	eng, err := agentlisp.NewFromSource(`(defun main () 1)`)
	require.NoError(t, err)

	state, err := eng.Start()
	require.NoError(t, err)
	_, err = eng.Resume(context.Background(), state, "nope")
	assert.Error(t, err)
}

func TestEngine_Hooks(t *testing.T) {
	var steps, effects, dones int
	hooks := agentlisp.Hooks{
		OnStep:   func(context.Context, *agentlisp.StepEvent) { steps++ },
		OnEffect: func(context.Context, *agentlisp.EffectEvent) { effects++ },
		OnDone:   func(context.Context, *agentlisp.DoneEvent) { dones++ },
	}

	eng, err := agentlisp.NewFromSource(`(defun main () (tell "hi"))`, agentlisp.WithHooks(hooks))
	require.NoError(t, err)

	ctx := context.Background()
	state, err := eng.Start()
	require.NoError(t, err)

	state, err = eng.RunToBoundary(ctx, state)
	require.NoError(t, err)
	require.True(t, state.Blocked())
	assert.Equal(t, 1, effects)

	state, err = eng.Resume(ctx, state, "")
	require.NoError(t, err)
	_, err = eng.RunToBoundary(ctx, state)
	require.NoError(t, err)

	assert.Positive(t, steps)
	assert.Equal(t, 1, dones)
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	eng, err := agentlisp.NewFromSource(`(defun main () (tell "hi"))`, agentlisp.WithMetrics(metrics))
	require.NoError(t, err)

	ctx := context.Background()
	state, err := eng.Start()
	require.NoError(t, err)
	state, err = eng.RunToBoundary(ctx, state)
	require.NoError(t, err)
	require.True(t, state.Blocked())

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Effects.WithLabelValues("tell")))
	assert.Positive(t, testutil.ToFloat64(metrics.Steps.WithLabelValues("tell")))
}

func TestEngine_HydrateAfterStoreRoundTrip(t *testing.T) {
	eng, err := agentlisp.NewFromSource(greeterSrc)
	require.NoError(t, err)

	ctx := context.Background()
	state, err := eng.Start()
	require.NoError(t, err)
	state, err = eng.RunToBoundary(ctx, state)
	require.NoError(t, err)
	require.True(t, state.Blocked())

	// Simulate a store round-trip: the clone has no function table until
	// the engine hydrates it.
	restored, err := state.Clone()
	require.NoError(t, err)
	eng.Hydrate(restored)

	restored, err = eng.Resume(ctx, restored, "Grace")
	require.NoError(t, err)
	restored, err = eng.RunToBoundary(ctx, restored)
	require.NoError(t, err)
	require.True(t, restored.Blocked())
	assert.Equal(t, "Grace", restored.Effect.Text)
}
