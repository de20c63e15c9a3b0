package ports

import (
	"context"

	"github.com/aretw0/surveylogic/pkg/domain"
)

// ProgressStore defines the interface for persisting response-session progress.
// This allows a respondent to leave a survey and resume it later.
type ProgressStore interface {
	// Save persists the progress for a given session ID.
	Save(ctx context.Context, sessionID string, progress *domain.Progress) error

	// Load retrieves the progress for a given session ID.
	// Returns domain.ErrProgressNotFound if the session does not exist or has expired.
	Load(ctx context.Context, sessionID string) (*domain.Progress, error)

	// Delete removes the progress for a given session ID.
	// Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
