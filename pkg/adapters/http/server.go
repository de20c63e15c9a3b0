package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/surveylogic/internal/logging"
	"github.com/aretw0/surveylogic/pkg/adapters/memory"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/ports"
	"github.com/aretw0/surveylogic/pkg/schema"
	"github.com/aretw0/surveylogic/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes caps request bodies. Answer sets are small; file answers carry references only.
const maxBodyBytes = 1 << 20

// Engine defines what the HTTP adapter needs from the survey engine.
type Engine interface {
	ports.Evaluator
	NewDriver(ctx context.Context, surveyID, sessionID string, opts ...session.DriverOption) (*session.Driver, error)
	Loader() ports.SurveyLoader
}

// Server serves the evaluation and session API.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	validator ports.AnswerValidator
	streams   *StreamManager
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithSessionManager sets where session progress lives. Defaults to an in-memory store.
func WithSessionManager(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithValidator replaces the answer validator used by next and submit.
func WithValidator(v ports.AnswerValidator) Option {
	return func(s *Server) {
		s.validator = v
	}
}

// WithMetrics exposes the gatherer at /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server for engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		validator: schema.NewValidator(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}
	s.streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Handler()
}

// Streams returns the SSE fan-out used for visibility diffs.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/surveys", s.ListSurveys)
		r.Route("/surveys/{surveyID}", func(r chi.Router) {
			r.Post("/evaluate-logic", s.EvaluateLogic)
			r.Get("/logic-map", s.GetLogicMap)
			r.Post("/sessions", s.StartSession)
		})
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Put("/answers/{questionID}", s.SetAnswer)
			r.Delete("/answers/{questionID}", s.ClearAnswer)
			r.Post("/next", s.Next)
			r.Post("/previous", s.Previous)
			r.Post("/submit", s.Submit)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListSurveys handles GET /api/surveys.
func (s *Server) ListSurveys(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.Loader().List(r.Context())
	if err != nil {
		s.fail(w, "list surveys", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"surveys": ids})
}

// EvaluateLogic handles POST /api/surveys/{surveyID}/evaluate-logic.
// It is stateless: the request carries the whole answer set.
func (s *Server) EvaluateLogic(w http.ResponseWriter, r *http.Request) {
	var req domain.EvaluateRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.engine.Evaluate(r.Context(), chi.URLParam(r, "surveyID"), req)
	if err != nil {
		s.fail(w, "evaluate", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetLogicMap handles GET /api/surveys/{surveyID}/logic-map.
func (s *Server) GetLogicMap(w http.ResponseWriter, r *http.Request) {
	m, err := s.engine.LogicMap(r.Context(), chi.URLParam(r, "surveyID"))
	if err != nil {
		s.fail(w, "logic map", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type startRequest struct {
	SessionID  string `json:"sessionId,omitempty"`
	ShareToken string `json:"shareToken,omitempty"`
}

// SessionResponse is the body returned by session endpoints.
type SessionResponse struct {
	session.View
	Step  *domain.Step `json:"step,omitempty"`
	Moved *bool        `json:"moved,omitempty"`
}

// StartSession handles POST /api/surveys/{surveyID}/sessions.
// A known sessionId for the same survey resumes its saved progress; one bound to
// another survey is rejected with 409.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}
	surveyID := chi.URLParam(r, "surveyID")
	if _, err := s.engine.Loader().Load(r.Context(), surveyID); err != nil {
		s.fail(w, "start session", err)
		return
	}

	sid := req.SessionID
	if sid == "" {
		sid = session.NewSessionID()
	}
	ctx := r.Context()
	if _, err := s.sessions.LoadOrStart(ctx, sid, surveyID); err != nil {
		s.fail(w, "start session", err)
		return
	}

	resp, err := s.mutate(ctx, sid, func(ctx context.Context, d *session.Driver) (SessionResponse, error) {
		return SessionResponse{View: d.View()}, nil
	}, func(p *domain.Progress) {
		if req.ShareToken != "" {
			p.ShareToken = req.ShareToken
		}
	})
	if err != nil {
		s.fail(w, "start session", err)
		return
	}
	s.logger.Info("session started", "session_id", sid, "survey_id", surveyID)
	writeJSON(w, http.StatusCreated, resp)
}

// GetSession handles GET /api/sessions/{sessionID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sessionID")
	p, err := s.sessions.Load(r.Context(), sid)
	if err != nil {
		s.fail(w, "get session", err)
		return
	}
	d, err := s.driver(r.Context(), p)
	if err != nil {
		s.fail(w, "get session", err)
		return
	}
	defer d.Close()
	writeJSON(w, http.StatusOK, SessionResponse{View: d.View()})
}

type answerRequest struct {
	Value domain.Answer `json:"value"`
}

// SetAnswer handles PUT /api/sessions/{sessionID}/answers/{questionID}.
func (s *Server) SetAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !s.decode(w, r, &req) {
		return
	}
	qid := chi.URLParam(r, "questionID")
	s.respond(w, r, "set answer", func(ctx context.Context, d *session.Driver) (SessionResponse, error) {
		v, err := d.SetAnswer(ctx, qid, req.Value)
		return SessionResponse{View: v}, err
	})
}

// ClearAnswer handles DELETE /api/sessions/{sessionID}/answers/{questionID}.
func (s *Server) ClearAnswer(w http.ResponseWriter, r *http.Request) {
	qid := chi.URLParam(r, "questionID")
	s.respond(w, r, "clear answer", func(ctx context.Context, d *session.Driver) (SessionResponse, error) {
		v, err := d.ClearAnswer(ctx, qid)
		return SessionResponse{View: v}, err
	})
}

// Next handles POST /api/sessions/{sessionID}/next.
func (s *Server) Next(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, "next", func(ctx context.Context, d *session.Driver) (SessionResponse, error) {
		step, err := d.Next(ctx)
		if err != nil {
			return SessionResponse{}, err
		}
		return SessionResponse{View: d.View(), Step: &step}, nil
	})
}

// Previous handles POST /api/sessions/{sessionID}/previous.
func (s *Server) Previous(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, "previous", func(ctx context.Context, d *session.Driver) (SessionResponse, error) {
		moved, err := d.Previous(ctx)
		if err != nil {
			return SessionResponse{}, err
		}
		return SessionResponse{View: d.View(), Moved: &moved}, nil
	})
}

// Submit handles POST /api/sessions/{sessionID}/submit.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, "submit", func(ctx context.Context, d *session.Driver) (SessionResponse, error) {
		if err := d.Submit(ctx); err != nil {
			return SessionResponse{}, err
		}
		return SessionResponse{View: d.View()}, nil
	})
}

// SubscribeEvents handles GET /api/sessions/{sessionID}/events (SSE).
// The optional watch parameter filters diffs by field: visibility, current, end.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if _, err := s.sessions.Store().Load(r.Context(), sessionID); err != nil {
		s.fail(w, "subscribe", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	ch, cancel := s.streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Debug("SSE: subscribed", "session_id", sessionID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !watched(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func watched(msg string, fields []string) bool {
	var diff domain.VisibilityDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range fields {
		switch strings.TrimSpace(field) {
		case "visibility":
			if len(diff.Shown) > 0 || len(diff.Hidden) > 0 {
				return true
			}
		case "current":
			if diff.CurrentQuestionID != nil {
				return true
			}
		case "end":
			if diff.EndSurvey != nil {
				return true
			}
		}
	}
	return false
}

// respond runs op against the session under its lock and writes the result.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, action string, op func(context.Context, *session.Driver) (SessionResponse, error)) {
	resp, err := s.mutate(r.Context(), chi.URLParam(r, "sessionID"), op, nil)
	if err != nil {
		s.fail(w, action, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// mutate loads the session, replays it into a driver, applies op and saves the
// driver's progress. Nothing is saved when op fails. Completed sessions are kept
// with their status until the store expires them.
func (s *Server) mutate(ctx context.Context, sessionID string, op func(context.Context, *session.Driver) (SessionResponse, error), edit func(*domain.Progress)) (SessionResponse, error) {
	var resp SessionResponse
	_, err := s.sessions.Update(ctx, sessionID, func(ctx context.Context, p *domain.Progress) (*domain.Progress, error) {
		d, err := s.driver(ctx, p)
		if err != nil {
			return nil, err
		}
		defer d.Close()

		resp, err = op(ctx, d)
		if err != nil {
			return nil, err
		}
		out := d.Progress()
		if edit != nil {
			edit(out)
		}
		return out, nil
	})
	return resp, err
}

func (s *Server) driver(ctx context.Context, p *domain.Progress) (*session.Driver, error) {
	return s.engine.NewDriver(ctx, p.SurveyID, p.SessionID,
		session.WithResume(p),
		session.WithValidator(s.validator),
		session.WithOnChange(s.streams.Publish),
	)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// fail maps engine errors to HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, action string, err error) {
	if issues := schema.ValidationErrors(err); issues != nil {
		msgs := make([]string, len(issues))
		for i, e := range issues {
			msgs[i] = e.Error()
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"issues": msgs,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSurveyNotFound),
		errors.Is(err, domain.ErrProgressNotFound),
		errors.Is(err, domain.ErrUnknownQuestion):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSessionCompleted),
		errors.Is(err, domain.ErrSessionConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrCursorOutOfRange),
		errors.Is(err, domain.ErrNoQuestion):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrLockTimeout):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(action+" failed", "err", err)
	} else {
		s.logger.Debug(action+" rejected", "status", status, "err", err)
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
