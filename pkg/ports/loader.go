package ports

import (
	"context"

	"github.com/aretw0/surveylogic/pkg/domain"
)

// SurveyLoader defines how the engine retrieves survey definitions.
// Loaders return canonical questions: both stored rule shapes are already reconciled.
type SurveyLoader interface {
	// Load retrieves a survey by ID.
	// Returns domain.ErrSurveyNotFound if the survey does not exist.
	Load(ctx context.Context, surveyID string) (*domain.Survey, error)

	// List returns the IDs of all available surveys.
	List(ctx context.Context) ([]string, error)
}
