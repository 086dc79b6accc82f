package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/agentlisp"
	httpadapter "github.com/aretw0/agentlisp/pkg/adapters/http"
	"github.com/aretw0/agentlisp/pkg/adapters/memory"
	"github.com/aretw0/agentlisp/pkg/machine"
	"github.com/aretw0/agentlisp/pkg/observability"
	"github.com/aretw0/agentlisp/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greeterSrc = `
(defun main ()
  (let ((name (read)))
    (write name)))
`

func newTestHandler(t *testing.T, opts ...httpadapter.Option) http.Handler {
	t.Helper()
	eng, err := agentlisp.NewFromSource(greeterSrc)
	require.NoError(t, err)

	sessions := session.NewManager(memory.NewStore(), session.WithHydrator(eng.Hydrate))
	return httpadapter.NewHandler(eng, sessions, opts...)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) httpadapter.SessionResponse {
	t.Helper()
	var resp httpadapter.SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestServer_Health(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestServer_GetProgram(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/program", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fns []httpadapter.FunctionInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fns))
	require.Len(t, fns, 1)
	assert.Equal(t, "main", fns[0].Name)
}

func TestServer_SessionLifecycle(t *testing.T) {
	h := newTestHandler(t)

	// Create
	rec := doJSON(t, h, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeSession(t, rec)
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, machine.PhaseComputing, created.Phase)

	base := "/sessions/" + created.SessionID

	// Run to the read boundary
	rec = doJSON(t, h, http.MethodPost, base+"/run", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	running := decodeSession(t, rec)
	assert.Equal(t, machine.PhaseInterop, running.Phase)
	require.NotNil(t, running.Effect)
	assert.Equal(t, machine.EffectRead, running.Effect.Kind)

	// Resume with input; the next boundary is the write effect
	rec = doJSON(t, h, http.MethodPost, base+"/resume", httpadapter.ResumeRequest{Result: "Ada"})
	require.Equal(t, http.StatusOK, rec.Code)
	resumed := decodeSession(t, rec)
	assert.Equal(t, machine.PhaseInterop, resumed.Phase)
	require.NotNil(t, resumed.Effect)
	assert.Equal(t, machine.EffectWrite, resumed.Effect.Kind)
	assert.Equal(t, "Ada", resumed.Effect.Text)

	// Acknowledge the write; program completes
	rec = doJSON(t, h, http.MethodPost, base+"/resume", httpadapter.ResumeRequest{Result: ""})
	require.Equal(t, http.StatusOK, rec.Code)
	final := decodeSession(t, rec)
	assert.Equal(t, machine.PhaseDone, final.Phase)
	require.NotNil(t, final.Value)

	// List + Get + Delete
	rec = doJSON(t, h, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.SessionID)

	rec = doJSON(t, h, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ResumeErrors(t *testing.T) {
	h := newTestHandler(t)

	t.Run("UnknownSession", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/sessions/ghost/resume", httpadapter.ResumeRequest{Result: "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("NotSuspended", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/sessions", nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		created := decodeSession(t, rec)

		// Fresh session is still computing; resuming it is a conflict.
		rec = doJSON(t, h, http.MethodPost, "/sessions/"+created.SessionID+"/resume",
			httpadapter.ResumeRequest{Result: "x"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/sessions/any/resume", bytes.NewBufferString("{nope"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = observability.NewMetrics(reg)

	h := newTestHandler(t, httpadapter.WithMetricsRegistry(reg))
	rec := doJSON(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
