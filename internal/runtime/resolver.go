package runtime

import "github.com/aretw0/surveylogic/pkg/domain"

// Resolve computes the visibility of one question and the directives that fired for it.
//
// Hide rules are evaluated first and any one firing hides the question. Otherwise,
// when show rules exist, at least one must fire. A question without show rules is
// visible by default. Directives are scanned independently of visibility.
func (p *Program) Resolve(questionID string, answers domain.Answers) domain.VisibilityResult {
	rules := p.byTarget[questionID]

	result := domain.VisibilityResult{Visible: p.visible(rules, answers)}

	for _, r := range rules {
		if !r.Action.IsDirective() || !p.fires(r, answers) {
			continue
		}
		switch r.Action {
		case domain.ActionSkip:
			if result.SkipTo == "" {
				result.SkipTo = r.TargetQuestionID
			}
		case domain.ActionJumpTo:
			if result.JumpTo == "" {
				result.JumpTo = r.TargetQuestionID
			}
		case domain.ActionEndSurvey:
			result.EndSurvey = true
		}
	}

	return result
}

func (p *Program) visible(rules []domain.LogicRule, answers domain.Answers) bool {
	var showRules []domain.LogicRule

	for _, r := range rules {
		switch r.Action {
		case domain.ActionHide:
			if p.fires(r, answers) {
				return false
			}
		case domain.ActionShow:
			showRules = append(showRules, r)
		}
	}

	if len(showRules) == 0 {
		return true
	}
	for _, r := range showRules {
		if p.fires(r, answers) {
			return true
		}
	}
	return false
}
