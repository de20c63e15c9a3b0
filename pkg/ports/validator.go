package ports

import "github.com/aretw0/surveylogic/pkg/domain"

// AnswerValidator checks a single answer before the driver navigates away from its question.
// Returning an error blocks navigation; the error is surfaced to the caller unchanged.
type AnswerValidator interface {
	Validate(question domain.Question, answer domain.Answer) error
}

// AnswerValidatorFunc adapts a function to AnswerValidator.
type AnswerValidatorFunc func(question domain.Question, answer domain.Answer) error

func (f AnswerValidatorFunc) Validate(question domain.Question, answer domain.Answer) error {
	return f(question, answer)
}
