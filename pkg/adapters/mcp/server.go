// Package mcp exposes the AgentLisp engine as an MCP server, so agent
// frameworks can start, run and resume program sessions as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/agentlisp/pkg/lang"
	"github.com/aretw0/agentlisp/pkg/machine"
	"github.com/aretw0/agentlisp/pkg/ports"
	"github.com/aretw0/agentlisp/pkg/runner"
	"github.com/aretw0/agentlisp/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionResponse provides a unified structure across adapters for a
// session's current position.
type SessionResponse struct {
	SessionID   string                 `json:"session_id" jsonschema_description:"The session identifier"`
	Phase       machine.Phase          `json:"phase" jsonschema_description:"computing, interop or done"`
	Effect      *machine.EffectRequest `json:"effect,omitempty" jsonschema_description:"The pending effect, when suspended"`
	Value       *lang.Value            `json:"value,omitempty" jsonschema_description:"The final value, when done"`
	Description string                 `json:"description" jsonschema_description:"Human readable summary of the position"`
}

// Server wraps the AgentLisp Engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.Evaluator
	sessions  *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Evaluator, sessions *session.Manager, version string) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("agentlisp-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: start_session
	startTool := mcp.NewTool("start_session",
		mcp.WithDescription("Start a new program session (or load it if the ID already exists). The session begins at the program entrypoint; use run_session to advance it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Identifier for the session")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStartSession))

	// TOOL: run_session
	runTool := mcp.NewTool("run_session",
		mcp.WithDescription("Advance a session to its next effect boundary or to completion. A suspended session reports the effect it is waiting on."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Identifier of the session to run")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRunSession))

	// TOOL: resume_effect
	resumeTool := mcp.NewTool("resume_effect",
		mcp.WithDescription("Fulfill the pending effect of a suspended session and run to the next boundary. For write/tell effects pass an empty result."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Identifier of the suspended session")),
		mcp.WithString("result", mcp.Description("The effect result text (input for read, answer for ask)")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(resumeTool, mcp.NewStructuredToolHandler(s.handleResumeEffect))

	// TOOL: inspect_program
	s.mcpServer.AddTool(mcp.NewTool("inspect_program",
		mcp.WithDescription("Get the program's function definitions for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.programSummary())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: list_sessions
	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List the IDs of all persisted sessions."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		return SessionResponse{}, fmt.Errorf("session_id is required")
	}

	state, _, err := s.sessions.LoadOrStart(ctx, id, s.engine.Start)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("start failed: %w", err)
	}

	return toResponse(id, state), nil
}

func (s *Server) handleRunSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	id, _ := args["session_id"].(string)

	state, err := s.sessions.Load(ctx, id)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("load failed: %w", err)
	}

	state, err = s.engine.RunToBoundary(ctx, state)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("run failed: %w", err)
	}

	if err := s.sessions.Save(ctx, id, state); err != nil {
		return SessionResponse{}, fmt.Errorf("save failed: %w", err)
	}

	return toResponse(id, state), nil
}

func (s *Server) handleResumeEffect(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResponse, error) {
	id, _ := args["session_id"].(string)
	result, _ := args["result"].(string)

	// Sanitize Input
	clean, err := runner.SanitizeInput(result)
	if err != nil {
		slog.Warn("MCP Resume: Input rejected", "error", err, "size", len(result))
		return SessionResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	state, err := s.sessions.Load(ctx, id)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("load failed: %w", err)
	}

	if !state.Blocked() {
		return SessionResponse{}, fmt.Errorf("session %s is not suspended on an effect", id)
	}

	state, err = s.engine.Resume(ctx, state, clean)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("resume failed: %w", err)
	}

	state, err = s.engine.RunToBoundary(ctx, state)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("run failed: %w", err)
	}

	if err := s.sessions.Save(ctx, id, state); err != nil {
		return SessionResponse{}, fmt.Errorf("save failed: %w", err)
	}

	return toResponse(id, state), nil
}

func (s *Server) programSummary() []map[string]any {
	program := s.engine.Program()
	out := make([]map[string]any, 0, len(program.Functions))
	for _, fn := range program.Functions {
		params := fn.Params
		if params == nil {
			params = []string{}
		}
		out = append(out, map[string]any{
			"name":   fn.Name,
			"params": params,
		})
	}
	return out
}

func (s *Server) registerResources() {
	// EXPOSE: agentlisp://program
	s.mcpServer.AddResource(mcp.NewResource("agentlisp://program", "Current Program Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.programSummary())
		if err != nil {
			return nil, fmt.Errorf("failed to inspect program: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "agentlisp://program",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
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
