package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/surveylogic/internal/logging"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const resourceURIPrefix = "surveylogic://surveys/"

// EvaluateResult mirrors the HTTP evaluate-logic response.
type EvaluateResult struct {
	VisibleQuestionIDs []string `json:"visibleQuestionIds" jsonschema_description:"Questions the respondent sees, in display order"`
	HiddenQuestionIDs  []string `json:"hiddenQuestionIds" jsonschema_description:"Questions hidden by logic rules or cut off by an early end"`
	NextQuestionID     *string  `json:"nextQuestionId,omitempty" jsonschema_description:"Where navigation goes from the current question"`
	ShouldEndSurvey    bool     `json:"shouldEndSurvey" jsonschema_description:"True when an end-survey rule fires"`
}

// Engine is what the MCP server needs from the survey engine.
type Engine interface {
	ports.Evaluator
	Loader() ports.SurveyLoader
}

// Server exposes the engine as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("surveylogic-mcp", strings.TrimSpace(version)),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources(context.Background())
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
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

func (s *Server) registerTools() {
	evaluateTool := mcp.NewTool("evaluate_logic",
		mcp.WithDescription("Evaluate a survey's conditional logic for an answer set: which questions are visible, where navigation goes next and whether the survey ends."),
		mcp.WithString("survey_id", mcp.Required(), mcp.Description("Survey identifier")),
		mcp.WithString("answers", mcp.Description(`JSON object of question id to answer, e.g. {"q1":"yes","q2":5,"q3":["a","b"]}`)),
		mcp.WithString("current_question_id", mcp.Description("Question the respondent is on (optional)")),
		mcp.WithOutputSchema[EvaluateResult](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))

	s.mcpServer.AddTool(mcp.NewTool("logic_map",
		mcp.WithDescription("Get the rule graph of a survey: questions as nodes and logic rules as edges."),
		mcp.WithString("survey_id", mcp.Required(), mcp.Description("Survey identifier")),
	), s.handleLogicMap)

	s.mcpServer.AddTool(mcp.NewTool("list_surveys",
		mcp.WithDescription("List the identifiers of the available surveys."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.engine.Loader().List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		data, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(data)), nil
	})
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EvaluateResult, error) {
	surveyID, _ := args["survey_id"].(string)
	if surveyID == "" {
		return EvaluateResult{}, errors.New("survey_id is required")
	}

	req := domain.EvaluateRequest{Answers: []domain.AnswerEntry{}}
	req.CurrentQuestionID, _ = args["current_question_id"].(string)

	if raw, ok := args["answers"].(string); ok && strings.TrimSpace(raw) != "" {
		var answers map[string]domain.Answer
		if err := json.Unmarshal([]byte(raw), &answers); err != nil {
			return EvaluateResult{}, fmt.Errorf("invalid answers: %w", err)
		}
		for id, a := range answers {
			req.Answers = append(req.Answers, domain.AnswerEntry{QuestionID: id, Value: a})
		}
	}

	resp, err := s.engine.Evaluate(ctx, surveyID, req)
	if err != nil {
		s.logger.Warn("MCP evaluate failed", "survey_id", surveyID, "err", err)
		return EvaluateResult{}, fmt.Errorf("evaluate failed: %w", err)
	}
	return EvaluateResult(resp), nil
}

func (s *Server) handleLogicMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	surveyID, err := request.RequireString("survey_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := s.engine.LogicMap(ctx, surveyID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("logic map failed: %v", err)), nil
	}
	data, _ := json.Marshal(m)
	return mcp.NewToolResultText(string(data)), nil
}

// registerResources exposes one resource per survey known at startup.
func (s *Server) registerResources(ctx context.Context) {
	ids, err := s.engine.Loader().List(ctx)
	if err != nil {
		s.logger.Warn("MCP: could not list surveys for resources", "err", err)
		return
	}
	for _, id := range ids {
		uri := resourceURIPrefix + id
		s.mcpServer.AddResource(mcp.NewResource(uri, "Survey "+id,
			mcp.WithMIMEType("application/json"),
		), s.readSurvey)
	}
}

func (s *Server) readSurvey(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(request.Params.URI, resourceURIPrefix)
	survey, err := s.engine.Loader().Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey: %w", err)
	}
	data, err := json.Marshal(survey)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
