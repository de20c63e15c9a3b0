package runtime

import (
	"github.com/aretw0/surveylogic/internal/compiler"
	"github.com/aretw0/surveylogic/pkg/domain"
)

// Program is an immutable, indexed form of a survey's questions and rules.
// It holds no answer state, so one Program may serve concurrent evaluations.
type Program struct {
	questions []domain.Question
	position  map[string]int

	// byTarget holds every rule keyed by the question it applies to, sorted by order.
	byTarget map[string][]domain.LogicRule
	// bySource holds directive rules keyed by the question whose answer they test.
	bySource map[string][]domain.LogicRule
	// endRules holds every EndSurvey rule of the survey, sorted by order.
	endRules []domain.LogicRule
}

// Compile canonicalizes the rules of the given questions and indexes them.
func Compile(questions []domain.Question) *Program {
	sorted := domain.SortQuestions(compiler.Canonicalize(questions))

	p := &Program{
		questions: sorted,
		position:  make(map[string]int, len(sorted)),
		byTarget:  make(map[string][]domain.LogicRule),
		bySource:  make(map[string][]domain.LogicRule),
	}

	for i, q := range sorted {
		if _, dup := p.position[q.ID]; !dup {
			p.position[q.ID] = i
		}
	}

	// Rules are visited in display order so that equal orders tie-break by declaration.
	for _, q := range sorted {
		for _, r := range q.LogicRules {
			if r.TargetQuestionID != "" {
				p.byTarget[r.TargetQuestionID] = append(p.byTarget[r.TargetQuestionID], r)
			}
			if r.Action.IsDirective() {
				p.bySource[r.SourceQuestionID] = append(p.bySource[r.SourceQuestionID], r)
			}
			if r.Action == domain.ActionEndSurvey {
				p.endRules = append(p.endRules, r)
			}
		}
	}

	for _, rules := range p.byTarget {
		domain.SortRules(rules)
	}
	for _, rules := range p.bySource {
		domain.SortRules(rules)
	}
	domain.SortRules(p.endRules)

	return p
}

// Questions returns the questions in display order.
func (p *Program) Questions() []domain.Question {
	return append([]domain.Question{}, p.questions...)
}

// Question looks up a question by id.
func (p *Program) Question(id string) (domain.Question, bool) {
	i, ok := p.position[id]
	if !ok {
		return domain.Question{}, false
	}
	return p.questions[i], true
}

// RulesFor returns the rules applying to a question, sorted by order.
func (p *Program) RulesFor(questionID string) []domain.LogicRule {
	return append([]domain.LogicRule{}, p.byTarget[questionID]...)
}

// answerOf returns the answer tested by a rule. Sources that are not questions of
// this survey read as Empty.
func (p *Program) answerOf(r domain.LogicRule, answers domain.Answers) domain.Answer {
	if _, ok := p.position[r.SourceQuestionID]; !ok {
		return domain.Empty()
	}
	return answers.Get(r.SourceQuestionID)
}

func (p *Program) fires(r domain.LogicRule, answers domain.Answers) bool {
	return Evaluate(p.answerOf(r, answers), r.Operator, r.ConditionValue)
}
