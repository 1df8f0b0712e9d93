// Package http exposes an engine and its form source over a REST surface:
// session lifecycle, answer/toggle mutations, the current view order, and an
// SSE stream of view diffs per session.
package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	espalier "github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
	"github.com/espalier-dev/espalier/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var openapiSpec []byte

// maxValueBytes caps the JSON-encoded size of a single answer value.
const maxValueBytes = 64 * 1024

// Server hosts engine sessions behind HTTP. Each POST /sessions opens one
// engine session keyed by a generated ID; mutations address it by that key.
type Server struct {
	engine   *espalier.Engine
	source   ports.FormSource
	logger   *slog.Logger
	streams  *StreamManager
	sessions *session.Registry
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithSessionRegistry replaces the default registry, for hosts that share a
// response store across replicas and need its distributed locking.
func WithSessionRegistry(reg *session.Registry) Option {
	return func(s *Server) { s.sessions = reg }
}

// NewServer creates a server over an engine and a form source.
func NewServer(engine *espalier.Engine, source ports.FormSource, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		source:   source,
		streams:  NewStreamManager(),
		sessions: session.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	return s
}

// Handler builds the chi router for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/openapi.yaml", s.getSpec)
	r.Get("/swagger", s.getSwagger)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/forms/{formID}", s.getForm)
	r.Post("/sessions", s.createSession)
	r.Delete("/sessions/{sessionID}", s.deleteSession)
	r.Get("/sessions/{sessionID}/view", s.getView)
	r.Post("/sessions/{sessionID}/answer", s.postAnswer)
	r.Post("/sessions/{sessionID}/comment", s.postComment)
	r.Post("/sessions/{sessionID}/toggle", s.postToggle)
	r.Get("/events", s.subscribeEvents)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := openapi3.NewLoader().LoadFromData(openapiSpec); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "espalier-http",
		"version":     strings.TrimSpace(espalier.Version),
		"api_version": apiVersion,
	})
}

func (s *Server) getSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(openapiSpec)
}

func (s *Server) getSwagger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(swaggerHTML))
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	form, err := s.source.Load(r.Context(), formID)
	if err != nil {
		s.logger.Warn("form load failed", "form", formID, "err", err)
		http.Error(w, fmt.Sprintf("form %q: %v", formID, err), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

type createSessionRequest struct {
	FormID string `json:"form_id"`
	StepID string `json:"step_id"`
}

type sessionResponse struct {
	SessionID string   `json:"session_id"`
	FormID    string   `json:"form_id"`
	StepID    string   `json:"step_id"`
	View      []string `json:"view"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	form, err := s.source.Load(r.Context(), body.FormID)
	if err != nil {
		http.Error(w, fmt.Sprintf("form %q: %v", body.FormID, err), http.StatusNotFound)
		return
	}
	step := form.StepByID(body.StepID)
	if step == nil {
		http.Error(w, fmt.Sprintf("step %q not found in form %q", body.StepID, body.FormID), http.StatusNotFound)
		return
	}

	sess, err := s.engine.OpenSession(step)
	if err != nil {
		http.Error(w, fmt.Sprintf("open session: %v", err), http.StatusInternalServerError)
		return
	}
	if err := sess.Begin(r.Context()); err != nil {
		sess.Close()
		http.Error(w, fmt.Sprintf("begin session: %v", err), http.StatusInternalServerError)
		return
	}

	id := uuid.NewString()
	s.sessions.Put(id, &session.Entry{Session: sess, FormID: body.FormID, StepID: body.StepID})

	s.logger.Info("session opened", "session_id", id, "form", body.FormID, "step", body.StepID)
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: id,
		FormID:    body.FormID,
		StepID:    body.StepID,
		View:      sess.VisibleNodeIDs(),
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	live, ok := s.sessions.Remove(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	live.Session.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(id string) (*session.Entry, bool) {
	return s.sessions.Get(id)
}

func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	live, ok := s.lookup(chi.URLParam(r, "sessionID"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": live.Session.VisibleNodeIDs()})
}

type answerRequest struct {
	QuestionID string          `json:"question_id"`
	Value      json.RawMessage `json:"value"`
}

func (s *Server) postAnswer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	live, ok := s.lookup(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var body answerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.QuestionID == "" {
		http.Error(w, "question_id is required", http.StatusBadRequest)
		return
	}
	if len(body.Value) > maxValueBytes {
		http.Error(w, "value too large", http.StatusRequestEntityTooLarge)
		return
	}

	var value any
	if len(body.Value) > 0 {
		if err := json.Unmarshal(body.Value, &value); err != nil {
			http.Error(w, "invalid value", http.StatusBadRequest)
			return
		}
	}

	s.mutate(w, r, id, live, func() error {
		return live.Session.Answer(r.Context(), body.QuestionID, value)
	})
}

type commentRequest struct {
	QuestionID string `json:"question_id"`
	Comment    string `json:"comment"`
}

func (s *Server) postComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	live, ok := s.lookup(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var body commentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.QuestionID == "" {
		http.Error(w, "question_id is required", http.StatusBadRequest)
		return
	}

	s.mutate(w, r, id, live, func() error {
		return live.Session.Comment(r.Context(), body.QuestionID, body.Comment)
	})
}

type toggleRequest struct {
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id"`
	Checked    bool   `json:"checked"`
}

func (s *Server) postToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	live, ok := s.lookup(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var body toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.QuestionID == "" || body.OptionID == "" {
		http.Error(w, "question_id and option_id are required", http.StatusBadRequest)
		return
	}

	s.mutate(w, r, id, live, func() error {
		return live.Session.ToggleOption(r.Context(), body.QuestionID, body.OptionID, body.Checked)
	})
}

// mutate runs one session mutation under the registry lock, broadcasts the
// resulting view diff to SSE subscribers, and answers with the new view order.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, sessionID string, live *session.Entry, op func() error) {
	var before, after []string
	err := s.sessions.WithLock(r.Context(), sessionID, func(ctx context.Context) error {
		before = live.Session.VisibleNodeIDs()
		if err := op(); err != nil {
			return err
		}
		after = live.Session.VisibleNodeIDs()
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionClosed):
			http.Error(w, err.Error(), http.StatusGone)
		case errors.Is(err, domain.ErrQuestionNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			s.logger.Error("session mutation failed", "session_id", sessionID, "err", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if diff := domain.DiffVisible(live.StepID, before, after); diff != nil {
		if data, err := json.Marshal(diff); err == nil {
			s.streams.Broadcast(sessionID, string(data))
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"view": after})
}

// subscribeEvents streams view diffs for one session as server-sent events.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if _, found := s.lookup(sessionID); !found {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(sessionID)
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Espalier API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
