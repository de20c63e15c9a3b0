package dsl

import (
	"fmt"

	"github.com/aretw0/surveylogic/pkg/adapters/memory"
	"github.com/aretw0/surveylogic/pkg/domain"
)

// Builder manages the survey construction. Questions are ordered by insertion.
type Builder struct {
	survey    domain.Survey
	questions []*QuestionBuilder
	index     map[string]*QuestionBuilder
}

// New creates a new survey builder.
func New(surveyID string) *Builder {
	return &Builder{
		survey: domain.Survey{ID: surveyID},
		index:  make(map[string]*QuestionBuilder),
	}
}

// Title sets the survey title.
func (b *Builder) Title(title string) *Builder {
	b.survey.Title = title
	return b
}

// Add creates a new question at the end of the survey.
// If the question already exists, it returns the existing builder.
func (b *Builder) Add(id string) *QuestionBuilder {
	if qb, ok := b.index[id]; ok {
		return qb
	}
	qb := &QuestionBuilder{
		question: domain.Question{
			ID:    id,
			Order: len(b.questions) + 1,
			Type:  domain.TypeText,
		},
	}
	b.questions = append(b.questions, qb)
	b.index[id] = qb
	return qb
}

// Survey returns the survey built so far.
func (b *Builder) Survey() *domain.Survey {
	s := b.survey
	s.Questions = make([]domain.Question, len(b.questions))
	for i, qb := range b.questions {
		s.Questions[i] = qb.Build()
	}
	return &s
}

// Build compiles the survey into a memory Loader.
func (b *Builder) Build() (*memory.Loader, error) {
	if b.survey.ID == "" {
		return nil, fmt.Errorf("survey id is required")
	}
	loader, err := memory.NewLoader(b.Survey())
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
