package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/surveylogic/internal/compiler"
	"github.com/aretw0/surveylogic/pkg/domain"
)

// Loader implements ports.SurveyLoader using an in-memory map.
type Loader struct {
	mu      sync.RWMutex
	surveys map[string]*domain.Survey
}

// NewLoader creates a loader holding the given surveys.
// Rules are canonicalized on the way in.
func NewLoader(surveys ...*domain.Survey) (*Loader, error) {
	l := &Loader{surveys: make(map[string]*domain.Survey)}
	for _, s := range surveys {
		if err := l.Add(s); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// NewFromDocuments parses raw YAML or JSON survey documents.
// This improves DX for tests and embedded fixtures.
func NewFromDocuments(docs ...string) (*Loader, error) {
	parser := compiler.NewParser()
	l := &Loader{surveys: make(map[string]*domain.Survey)}
	for i, doc := range docs {
		s, err := parser.Parse([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if err := l.Add(s); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add registers or replaces a survey.
func (l *Loader) Add(s *domain.Survey) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("survey missing ID")
	}
	cp := *s
	cp.Questions = compiler.Canonicalize(s.Questions)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.surveys[s.ID] = &cp
	return nil
}

// Load retrieves a survey by ID.
func (l *Loader) Load(ctx context.Context, surveyID string) (*domain.Survey, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.surveys[surveyID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSurveyNotFound, surveyID)
	}
	cp := *s
	cp.Questions = append([]domain.Question{}, s.Questions...)
	return &cp, nil
}

// List returns all survey IDs.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]string, 0, len(l.surveys))
	for k := range l.surveys {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
