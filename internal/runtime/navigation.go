package runtime

import "github.com/aretw0/surveylogic/pkg/domain"

// Next decides where navigation goes after currentID.
//
// Directive rules whose source is the current question are scanned by ascending
// order and the first one that fires wins, whatever its kind. A Skip or JumpTo
// pointing at an unknown question is dropped. A known destination that is not
// visible ends the walk. Without a directive the next visible question follows.
// An empty currentID starts at the first visible question.
func (p *Program) Next(answers domain.Answers, currentID string) domain.Step {
	return p.stepFrom(p.VisibleQuestions(answers), answers, currentID)
}

func (p *Program) stepFrom(visible []domain.Question, answers domain.Answers, currentID string) domain.Step {
	if currentID == "" {
		if len(visible) == 0 {
			return domain.Step{End: true, Index: -1, Reason: domain.StepEndOfList}
		}
		return domain.Step{QuestionID: visible[0].ID, Index: 0, Reason: domain.StepSequential}
	}

	for _, r := range p.bySource[currentID] {
		if !p.fires(r, answers) {
			continue
		}
		switch r.Action {
		case domain.ActionEndSurvey:
			return domain.Step{End: true, Index: -1, Reason: domain.StepEndSurvey, RuleID: r.ID}
		case domain.ActionSkip, domain.ActionJumpTo:
			if _, known := p.position[r.TargetQuestionID]; !known {
				continue
			}
			reason := domain.StepJump
			if r.Action == domain.ActionSkip {
				reason = domain.StepSkip
			}
			if i := indexOf(visible, r.TargetQuestionID); i >= 0 {
				return domain.Step{QuestionID: r.TargetQuestionID, Index: i, Reason: reason, RuleID: r.ID}
			}
			return domain.Step{End: true, Index: -1, Reason: domain.StepUnresolved, RuleID: r.ID}
		}
	}

	return p.sequential(visible, currentID)
}

func (p *Program) sequential(visible []domain.Question, currentID string) domain.Step {
	if i := indexOf(visible, currentID); i >= 0 {
		if i+1 < len(visible) {
			return domain.Step{QuestionID: visible[i+1].ID, Index: i + 1, Reason: domain.StepSequential}
		}
		return domain.Step{End: true, Index: -1, Reason: domain.StepEndOfList}
	}

	// The current question is hidden or unknown: continue after its display position.
	from := -1
	if pos, ok := p.position[currentID]; ok {
		from = pos
	}
	for i, q := range visible {
		if p.position[q.ID] > from {
			return domain.Step{QuestionID: q.ID, Index: i, Reason: domain.StepSequential}
		}
	}
	return domain.Step{End: true, Index: -1, Reason: domain.StepEndOfList}
}

func indexOf(questions []domain.Question, id string) int {
	for i, q := range questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}
