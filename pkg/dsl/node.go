package dsl

import (
	"fmt"

	"github.com/aretw0/surveylogic/pkg/domain"
)

// QuestionBuilder provides a fluent API for configuring a question.
// Rules are evaluated in the order they are added.
type QuestionBuilder struct {
	question domain.Question
}

// Question sets the prompt text.
func (q *QuestionBuilder) Question(text string) *QuestionBuilder {
	q.question.Text = text
	return q
}

// Type sets the question type.
func (q *QuestionBuilder) Type(t domain.QuestionType) *QuestionBuilder {
	q.question.Type = t
	return q
}

// Choice makes the question single choice over options.
func (q *QuestionBuilder) Choice(options ...string) *QuestionBuilder {
	q.question.Type = domain.TypeSingleChoice
	q.question.Options = options
	return q
}

// MultiChoice makes the question multiple choice over options.
func (q *QuestionBuilder) MultiChoice(options ...string) *QuestionBuilder {
	q.question.Type = domain.TypeMultipleChoice
	q.question.Options = options
	return q
}

// Matrix makes the question a matrix of rows rated on columns.
func (q *QuestionBuilder) Matrix(rows []string, columns ...string) *QuestionBuilder {
	q.question.Type = domain.TypeMatrix
	q.question.Rows = rows
	q.question.Options = columns
	return q
}

// Required marks the question as mandatory.
func (q *QuestionBuilder) Required() *QuestionBuilder {
	q.question.Required = true
	return q
}

// ShowIf shows this question only while source's answer satisfies op.
func (q *QuestionBuilder) ShowIf(source string, op domain.Operator, value string) *QuestionBuilder {
	return q.rule(source, op, value, domain.ActionShow, q.question.ID)
}

// HideIf hides this question while source's answer satisfies op.
func (q *QuestionBuilder) HideIf(source string, op domain.Operator, value string) *QuestionBuilder {
	return q.rule(source, op, value, domain.ActionHide, q.question.ID)
}

// EndIf ends the survey at this question when source's answer satisfies op.
func (q *QuestionBuilder) EndIf(source string, op domain.Operator, value string) *QuestionBuilder {
	return q.rule(source, op, value, domain.ActionEndSurvey, q.question.ID)
}

// SkipTo moves forward to target when this question's answer satisfies op.
func (q *QuestionBuilder) SkipTo(target string, op domain.Operator, value string) *QuestionBuilder {
	return q.rule(q.question.ID, op, value, domain.ActionSkip, target)
}

// JumpTo goes to target, in any direction, when this question's answer satisfies op.
func (q *QuestionBuilder) JumpTo(target string, op domain.Operator, value string) *QuestionBuilder {
	return q.rule(q.question.ID, op, value, domain.ActionJumpTo, target)
}

// rule appends a rule. Presence operators carry no condition value.
func (q *QuestionBuilder) rule(source string, op domain.Operator, value string, action domain.Action, target string) *QuestionBuilder {
	r := domain.LogicRule{
		ID:               fmt.Sprintf("%s-%d", q.question.ID, len(q.question.LogicRules)+1),
		SourceQuestionID: source,
		Operator:         op,
		Action:           action,
		TargetQuestionID: target,
		Order:            len(q.question.LogicRules),
	}
	if !op.IsPresence() {
		r.ConditionValue = domain.StrPtr(value)
	}
	q.question.LogicRules = append(q.question.LogicRules, r)
	return q
}

// Build returns the underlying domain.Question.
func (q *QuestionBuilder) Build() domain.Question {
	out := q.question
	out.LogicRules = append([]domain.LogicRule(nil), q.question.LogicRules...)
	return out
}
