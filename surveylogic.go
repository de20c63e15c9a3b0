package surveylogic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/surveylogic/internal/logging"
	"github.com/aretw0/surveylogic/internal/runtime"
	"github.com/aretw0/surveylogic/pkg/adapters/file"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/ports"
	"github.com/aretw0/surveylogic/pkg/session"
)

// Program is a compiled survey: questions in display order with indexed rules.
// It holds no answers and is safe to share between goroutines.
type Program = runtime.Program

// Compile canonicalizes and indexes questions for evaluation.
func Compile(questions []domain.Question) *Program {
	return runtime.Compile(questions)
}

// VisibleQuestions returns the questions a respondent sees for the given answers.
func VisibleQuestions(questions []domain.Question, answers domain.Answers) []domain.Question {
	return runtime.Compile(questions).VisibleQuestions(answers)
}

// ShouldEndSurvey reports whether any EndSurvey rule fires for the given answers.
func ShouldEndSurvey(questions []domain.Question, answers domain.Answers) bool {
	return runtime.Compile(questions).ShouldEndSurvey(answers)
}

// Resolve returns the visibility verdict for one question.
func Resolve(questions []domain.Question, questionID string, answers domain.Answers) domain.VisibilityResult {
	return runtime.Compile(questions).Resolve(questionID, answers)
}

// Evaluate runs a full evaluation of an answer set against questions.
func Evaluate(questions []domain.Question, req domain.EvaluateRequest) domain.EvaluateResponse {
	return runtime.Compile(questions).Evaluate(req)
}

// Engine evaluates surveys provided by a SurveyLoader.
// Compiled programs are cached per survey until Invalidate is called.
type Engine struct {
	loader ports.SurveyLoader
	hooks  domain.LifecycleHooks
	logger *slog.Logger

	mu       sync.RWMutex
	programs map[string]*Program
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLoader injects a SurveyLoader, bypassing the default directory loader.
func WithLoader(l ports.SurveyLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine reading survey documents from surveysDir.
// With WithLoader, surveysDir may be empty.
func New(surveysDir string, opts ...Option) (*Engine, error) {
	e := &Engine{programs: make(map[string]*Program)}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.loader == nil {
		if surveysDir == "" {
			return nil, fmt.Errorf("surveysDir is required when no custom loader is provided")
		}
		e.loader = file.NewLoader(surveysDir, file.WithLogger(e.logger))
	}
	return e, nil
}

var _ ports.Evaluator = (*Engine)(nil)

// Program returns the compiled program of a survey.
func (e *Engine) Program(ctx context.Context, surveyID string) (*Program, error) {
	e.mu.RLock()
	p, ok := e.programs[surveyID]
	e.mu.RUnlock()
	if ok {
		return p, nil
	}

	survey, err := e.loader.Load(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	p = runtime.Compile(survey.Questions)

	e.mu.Lock()
	e.programs[surveyID] = p
	e.mu.Unlock()

	e.logger.Debug("survey compiled", "survey_id", surveyID, "questions", len(survey.Questions))
	return p, nil
}

// Invalidate drops cached programs. Without ids every survey is dropped.
func (e *Engine) Invalidate(surveyIDs ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(surveyIDs) == 0 {
		e.programs = make(map[string]*Program)
		return
	}
	for _, id := range surveyIDs {
		delete(e.programs, id)
	}
}

// Evaluate is the server-side evaluation of an answer set.
func (e *Engine) Evaluate(ctx context.Context, surveyID string, req domain.EvaluateRequest) (domain.EvaluateResponse, error) {
	p, err := e.Program(ctx, surveyID)
	if err != nil {
		return domain.EvaluateResponse{}, err
	}

	start := time.Now()
	resp := p.Evaluate(req)

	if e.hooks.OnEvaluate != nil {
		e.hooks.OnEvaluate(ctx, &domain.EvaluateEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now(),
				Type:      domain.EventEvaluate,
				SurveyID:  surveyID,
			},
			Visible:   len(resp.VisibleQuestionIDs),
			Hidden:    len(resp.HiddenQuestionIDs),
			EndSurvey: resp.ShouldEndSurvey,
			Duration:  time.Since(start),
		})
	}
	return resp, nil
}

// LogicMap returns the rule graph of a survey.
func (e *Engine) LogicMap(ctx context.Context, surveyID string) (domain.LogicMap, error) {
	p, err := e.Program(ctx, surveyID)
	if err != nil {
		return domain.LogicMap{}, err
	}
	return p.BuildLogicMap(), nil
}

// NewDriver starts a stateful driver for one respondent. Engine hooks are applied
// ahead of any hooks passed in opts.
func (e *Engine) NewDriver(ctx context.Context, surveyID, sessionID string, opts ...session.DriverOption) (*session.Driver, error) {
	p, err := e.Program(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	base := []session.DriverOption{
		session.WithHooks(e.hooks),
		session.WithDriverLogger(e.logger.With("survey_id", surveyID)),
	}
	return session.NewDriver(p, surveyID, sessionID, append(base, opts...)...), nil
}

// Loader returns the underlying SurveyLoader.
func (e *Engine) Loader() ports.SurveyLoader {
	return e.loader
}
