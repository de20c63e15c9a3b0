package schema

import (
	"github.com/aretw0/surveylogic/internal/runtime"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/ports"
)

// Validator checks answers by question type. The zero value is not usable; call NewValidator.
type Validator struct {
	checks map[domain.QuestionType]Check
}

var _ ports.AnswerValidator = (*Validator)(nil)

func NewValidator() *Validator {
	return &Validator{checks: builtinChecks()}
}

// Register installs or replaces the check for a question type.
func (v *Validator) Register(t domain.QuestionType, check Check) {
	v.checks[t] = check
}

// Validate checks a single answer. Unanswered optional questions always pass.
// Unknown question types only get the required check.
func (v *Validator) Validate(q domain.Question, a domain.Answer) error {
	if !runtime.IsAnswered(a) {
		if q.Required {
			return &ValidationError{QuestionID: q.ID, Reason: "answer required", Err: ErrRequired}
		}
		return nil
	}
	check, ok := v.checks[q.Type]
	if !ok {
		return nil
	}
	return aggregate(check(q, a))
}

// ValidateAll checks every question in ids against answers, collecting all failures.
// Callers pass the visible ids so hidden questions are never required.
func (v *Validator) ValidateAll(questions []domain.Question, ids []string, answers domain.Answers) error {
	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var errs []error
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			continue
		}
		if err := v.Validate(q, answers.Get(id)); err != nil {
			if nested := ValidationErrors(err); nested != nil {
				errs = append(errs, nested...)
			} else {
				errs = append(errs, err)
			}
		}
	}
	return aggregate(errs)
}
