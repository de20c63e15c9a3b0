package runtime

import "github.com/aretw0/surveylogic/pkg/domain"

// VisibleQuestions walks the questions in display order and returns the visible ones.
// Traversal stops after the first question whose rules fire EndSurvey.
func (p *Program) VisibleQuestions(answers domain.Answers) []domain.Question {
	visible := make([]domain.Question, 0, len(p.questions))
	for _, q := range p.questions {
		res := p.Resolve(q.ID, answers)
		if res.Visible {
			visible = append(visible, q)
		}
		if res.EndSurvey {
			break
		}
	}
	return visible
}

// ShouldEndSurvey reports whether any EndSurvey rule of the survey fires.
// It does not depend on visibility.
func (p *Program) ShouldEndSurvey(answers domain.Answers) bool {
	for _, r := range p.endRules {
		if p.fires(r, answers) {
			return true
		}
	}
	return false
}

// HiddenQuestions returns the questions, in display order, that are not in visible.
func (p *Program) HiddenQuestions(visible []domain.Question) []domain.Question {
	shown := make(map[string]bool, len(visible))
	for _, q := range visible {
		shown[q.ID] = true
	}
	hidden := make([]domain.Question, 0, len(p.questions)-len(visible))
	for _, q := range p.questions {
		if !shown[q.ID] {
			hidden = append(hidden, q)
		}
	}
	return hidden
}

// Evaluate produces the authoritative evaluation served to API clients.
func (p *Program) Evaluate(req domain.EvaluateRequest) domain.EvaluateResponse {
	answers := req.AnswerMap()
	visible := p.VisibleQuestions(answers)

	resp := domain.EvaluateResponse{
		VisibleQuestionIDs: domain.QuestionIDs(visible),
		HiddenQuestionIDs:  domain.QuestionIDs(p.HiddenQuestions(visible)),
		ShouldEndSurvey:    p.ShouldEndSurvey(answers),
	}

	if !resp.ShouldEndSurvey {
		step := p.stepFrom(visible, answers, req.CurrentQuestionID)
		if !step.End {
			next := step.QuestionID
			resp.NextQuestionID = &next
		}
	}
	return resp
}
