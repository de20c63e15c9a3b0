package ports

import (
	"context"

	"github.com/aretw0/surveylogic/pkg/domain"
)

// Evaluator defines the stateless evaluation surface used by adapters (HTTP, MCP).
// Each call receives its own answers and shares no mutable state with other calls.
type Evaluator interface {
	// Evaluate computes visibility and navigation for the given survey and answers.
	Evaluate(ctx context.Context, surveyID string, req domain.EvaluateRequest) (domain.EvaluateResponse, error)

	// LogicMap returns the rule graph of a survey for introspection.
	LogicMap(ctx context.Context, surveyID string) (domain.LogicMap, error)
}
