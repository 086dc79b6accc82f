// Package http exposes the AgentLisp engine over a REST-ish API: sessions
// are created, run to their effect boundaries, and resumed with effect
// results. State change events stream over SSE.
package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/agentlisp/internal/logging"
	"github.com/aretw0/agentlisp/pkg/lang"
	"github.com/aretw0/agentlisp/pkg/machine"
	"github.com/aretw0/agentlisp/pkg/ports"
	"github.com/aretw0/agentlisp/pkg/runner"
	"github.com/aretw0/agentlisp/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server routes API requests to the engine and the session manager.
type Server struct {
	Engine   ports.Evaluator
	Sessions *session.Manager
	Streams  *StreamManager

	logger   *slog.Logger
	registry *prometheus.Registry
	version  string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsRegistry mounts /metrics backed by the given registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithVersion sets the version string reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Evaluator, sessions *session.Manager, opts ...Option) http.Handler {
	server := &Server{
		Engine:   engine,
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/program", server.GetProgram)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", server.ListSessions)
		r.Post("/", server.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", server.GetSession)
			r.Delete("/", server.DeleteSession)
			r.Post("/run", server.RunSession)
			r.Post("/resume", server.ResumeSession)
			r.Get("/events", server.SubscribeEvents)
		})
	})

	if server.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
			server.registry, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionResponse is the wire form of a session's current position.
type SessionResponse struct {
	SessionID   string                 `json:"session_id"`
	Phase       machine.Phase          `json:"phase"`
	Effect      *machine.EffectRequest `json:"effect,omitempty"`
	Value       *lang.Value            `json:"value,omitempty"`
	Description string                 `json:"description"`
}

// ResumeRequest carries the effect result for POST /sessions/{id}/resume.
type ResumeRequest struct {
	Result string `json:"result"`
}

// FunctionInfo summarizes one program function for GET /program.
type FunctionInfo struct {
	Name   string   `json:"name"`
	Params []string `json:"params"`
}

func toResponse(id string, state *machine.State) SessionResponse {
	return SessionResponse{
		SessionID:   id,
		Phase:       state.Phase,
		Effect:      state.Effect,
		Value:       state.Value,
		Description: state.Describe(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "agentlisp-http",
		"version": s.version,
	})
}

// GetProgram handles the GET /program request.
func (s *Server) GetProgram(w http.ResponseWriter, r *http.Request) {
	program := s.Engine.Program()
	infos := make([]FunctionInfo, 0, len(program.Functions))
	for _, fn := range program.Functions {
		params := fn.Params
		if params == nil {
			params = []string{}
		}
		infos = append(infos, FunctionInfo{Name: fn.Name, Params: params})
	}
	s.writeJSON(w, http.StatusOK, infos)
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("List failed", "err", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// CreateSession handles the POST /sessions request. It starts a fresh
// program state and persists it under a new session ID.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := newSessionID()

	state, _, err := s.Sessions.LoadOrStart(r.Context(), id, s.Engine.Start)
	if err != nil {
		http.Error(w, fmt.Sprintf("Start error: %v", err), http.StatusInternalServerError)
		s.logger.Error("CreateSession failed", "err", err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toResponse(id, state))
}

// GetSession handles the GET /sessions/{sessionID} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	state, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.sessionError(w, id, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toResponse(id, state))
}

// DeleteSession handles the DELETE /sessions/{sessionID} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		s.logger.Error("DeleteSession failed", "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunSession handles the POST /sessions/{sessionID}/run request. It drives
// the session to its next effect boundary (or completion) and persists the
// result.
func (s *Server) RunSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	ctx := r.Context()

	state, err := s.Sessions.Load(ctx, id)
	if err != nil {
		s.sessionError(w, id, err)
		return
	}

	state, err = s.Engine.RunToBoundary(ctx, state)
	if err != nil {
		http.Error(w, fmt.Sprintf("Run error: %v", err), http.StatusInternalServerError)
		s.logger.Error("RunSession failed", "session_id", id, "err", err)
		return
	}

	if err := s.Sessions.Save(ctx, id, state); err != nil {
		http.Error(w, fmt.Sprintf("Save error: %v", err), http.StatusInternalServerError)
		return
	}

	s.broadcast(id, state)
	s.writeJSON(w, http.StatusOK, toResponse(id, state))
}

// ResumeSession handles the POST /sessions/{sessionID}/resume request. It
// feeds the effect result to the suspended session and runs to the next
// boundary.
func (s *Server) ResumeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	ctx := r.Context()

	var body ResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("ResumeSession: Invalid request body", "err", err)
		return
	}

	// Sanitize Input (Global Policy)
	result := body.Result
	if result != "" {
		clean, err := runner.SanitizeInput(result)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
			s.logger.Warn("ResumeSession: Input rejected", "err", err, "size", len(result))
			return
		}
		result = clean
	}

	state, err := s.Sessions.Load(ctx, id)
	if err != nil {
		s.sessionError(w, id, err)
		return
	}

	if !state.Blocked() {
		http.Error(w, "Session is not suspended on an effect", http.StatusConflict)
		return
	}

	state, err = s.Engine.Resume(ctx, state, result)
	if err != nil {
		http.Error(w, fmt.Sprintf("Resume error: %v", err), http.StatusInternalServerError)
		s.logger.Error("ResumeSession failed", "session_id", id, "err", err)
		return
	}

	state, err = s.Engine.RunToBoundary(ctx, state)
	if err != nil {
		http.Error(w, fmt.Sprintf("Run error: %v", err), http.StatusInternalServerError)
		return
	}

	if err := s.Sessions.Save(ctx, id, state); err != nil {
		http.Error(w, fmt.Sprintf("Save error: %v", err), http.StatusInternalServerError)
		return
	}

	s.broadcast(id, state)
	s.writeJSON(w, http.StatusOK, toResponse(id, state))
}

func (s *Server) sessionError(w http.ResponseWriter, id string, err error) {
	if err == machine.ErrSessionNotFound {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
	s.logger.Error("session load failed", "session_id", id, "err", err)
}

func (s *Server) broadcast(id string, state *machine.State) {
	payload, err := json.Marshal(toResponse(id, state))
	if err != nil {
		return
	}
	s.Streams.Broadcast(id, string(payload))
}

func newSessionID() string {
	return fmt.Sprintf("sess-%d", time.Now().UnixNano())
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if subs, ok := sm.subscribers[sessionID]; ok {
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
			}
		}
	}
}

// SubscribeEvents handles the GET /sessions/{sessionID}/events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "sessionID")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
