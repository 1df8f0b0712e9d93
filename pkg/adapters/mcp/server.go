// Package mcp exposes the engine as a Model Context Protocol server, so
// agent hosts can walk a form conversationally: open a session, answer and
// toggle, and read back the visible question order after each mutation.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	espalier "github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/ports"
	sessionreg "github.com/espalier-dev/espalier/pkg/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ViewResponse is the unified tool result: the session handle and the
// ordered node IDs currently rendered.
type ViewResponse struct {
	SessionID string   `json:"session_id" jsonschema_description:"Handle for subsequent calls"`
	View      []string `json:"view" jsonschema_description:"Ordered IDs of the visible questions"`
}

// Server wraps an engine and a form source as an MCP server.
type Server struct {
	engine    *espalier.Engine
	source    ports.FormSource
	logger    *slog.Logger
	mcpServer *server.MCPServer
	sessions  *sessionreg.Registry
}

// NewServer creates a new MCP server instance.
func NewServer(engine *espalier.Engine, source ports.FormSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		source:    source,
		logger:    logger,
		mcpServer: server.NewMCPServer("espalier-mcp", strings.TrimSpace(espalier.Version)),
		sessions:  sessionreg.NewRegistry(sessionreg.WithLogger(logger)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE, shutting down
// gracefully when the context is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	openTool := mcp.NewTool("open_session",
		mcp.WithDescription("Open a session over one step of a form and render its baseline view."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("Form to load")),
		mcp.WithString("step_id", mcp.Required(), mcp.Description("Step of the form to render")),
		mcp.WithOutputSchema[ViewResponse](),
	)
	s.mcpServer.AddTool(openTool, mcp.NewStructuredToolHandler(s.handleOpenSession))

	answerTool := mcp.NewTool("answer_question",
		mcp.WithDescription("Store an answer and reconcile conditional visibility."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session handle from open_session")),
		mcp.WithString("question_id", mcp.Required(), mcp.Description("Question to answer")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Answer value as JSON (string, number, or array)")),
		mcp.WithOutputSchema[ViewResponse](),
	)
	s.mcpServer.AddTool(answerTool, mcp.NewStructuredToolHandler(s.handleAnswer))

	toggleTool := mcp.NewTool("toggle_option",
		mcp.WithDescription("Check or uncheck one option of a checkbox question."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session handle from open_session")),
		mcp.WithString("question_id", mcp.Required(), mcp.Description("Checkbox question")),
		mcp.WithString("option_id", mcp.Required(), mcp.Description("Option to toggle")),
		mcp.WithBoolean("checked", mcp.Required(), mcp.Description("New checked state")),
		mcp.WithOutputSchema[ViewResponse](),
	)
	s.mcpServer.AddTool(toggleTool, mcp.NewStructuredToolHandler(s.handleToggle))

	viewTool := mcp.NewTool("get_view",
		mcp.WithDescription("Read the current visible question order of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session handle from open_session")),
		mcp.WithOutputSchema[ViewResponse](),
	)
	s.mcpServer.AddTool(viewTool, mcp.NewStructuredToolHandler(s.handleGetView))

	s.mcpServer.AddTool(mcp.NewTool("close_session",
		mcp.WithDescription("Close a session and stop its pending timers."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session handle from open_session")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := request.GetString("session_id", "")
		entry, ok := s.sessions.Remove(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown session %q", id)), nil
		}
		entry.Session.Close()
		return mcp.NewToolResultText("closed"), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_form",
		mcp.WithDescription("Get a full form definition for introspection."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("Form to load")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		formID := request.GetString("form_id", "")
		form, err := s.source.Load(ctx, formID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(form)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) lookup(id string) (*espalier.Session, error) {
	entry, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown session %q", id)
	}
	return entry.Session, nil
}

func (s *Server) handleOpenSession(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ViewResponse, error) {
	formID, _ := args["form_id"].(string)
	stepID, _ := args["step_id"].(string)

	form, err := s.source.Load(ctx, formID)
	if err != nil {
		return ViewResponse{}, fmt.Errorf("load form: %w", err)
	}
	step := form.StepByID(stepID)
	if step == nil {
		return ViewResponse{}, fmt.Errorf("step %q not found in form %q", stepID, formID)
	}

	session, err := s.engine.OpenSession(step)
	if err != nil {
		return ViewResponse{}, err
	}
	if err := session.Begin(ctx); err != nil {
		session.Close()
		return ViewResponse{}, fmt.Errorf("begin session: %w", err)
	}

	id := uuid.NewString()
	s.sessions.Put(id, &sessionreg.Entry{Session: session, FormID: formID, StepID: stepID})

	s.logger.Info("mcp session opened", "session_id", id, "form", formID, "step", stepID)
	return ViewResponse{SessionID: id, View: session.VisibleNodeIDs()}, nil
}

func (s *Server) handleAnswer(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ViewResponse, error) {
	id, _ := args["session_id"].(string)
	questionID, _ := args["question_id"].(string)
	rawValue, _ := args["value"].(string)

	session, err := s.lookup(id)
	if err != nil {
		return ViewResponse{}, err
	}

	// The value arrives as a JSON string so one parameter carries any shape;
	// a bare word is accepted as a plain string.
	var value any
	if err := json.Unmarshal([]byte(rawValue), &value); err != nil {
		value = rawValue
	}

	if err := session.Answer(ctx, questionID, value); err != nil {
		return ViewResponse{}, fmt.Errorf("answer failed: %w", err)
	}
	return ViewResponse{SessionID: id, View: session.VisibleNodeIDs()}, nil
}

func (s *Server) handleToggle(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ViewResponse, error) {
	id, _ := args["session_id"].(string)
	questionID, _ := args["question_id"].(string)
	optionID, _ := args["option_id"].(string)
	checked, _ := args["checked"].(bool)

	session, err := s.lookup(id)
	if err != nil {
		return ViewResponse{}, err
	}
	if err := session.ToggleOption(ctx, questionID, optionID, checked); err != nil {
		return ViewResponse{}, fmt.Errorf("toggle failed: %w", err)
	}
	return ViewResponse{SessionID: id, View: session.VisibleNodeIDs()}, nil
}

func (s *Server) handleGetView(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ViewResponse, error) {
	id, _ := args["session_id"].(string)
	session, err := s.lookup(id)
	if err != nil {
		return ViewResponse{}, err
	}
	return ViewResponse{SessionID: id, View: session.VisibleNodeIDs()}, nil
}

// lister is the optional enumeration surface of a form source; the Loam
// adapter implements it.
type lister interface {
	List(ctx context.Context) ([]string, error)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("espalier://forms", "Available Form Definitions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		src, ok := s.source.(lister)
		if !ok {
			return nil, fmt.Errorf("form source does not support listing")
		}
		ids, err := src.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list forms: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "espalier://forms",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
