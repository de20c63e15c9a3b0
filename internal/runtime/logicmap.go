package runtime

import "github.com/aretw0/surveylogic/pkg/domain"

// BuildLogicMap describes the survey's rules as a graph of questions.
func (p *Program) BuildLogicMap() domain.LogicMap {
	m := domain.LogicMap{
		Nodes: make([]domain.LogicNode, 0, len(p.questions)),
		Edges: []domain.LogicEdge{},
	}

	for _, q := range p.questions {
		conditional := false
		for _, r := range p.byTarget[q.ID] {
			if r.Action.IsVisibility() {
				conditional = true
				break
			}
		}
		m.Nodes = append(m.Nodes, domain.LogicNode{
			ID:            q.ID,
			Text:          q.Text,
			Order:         q.Order,
			Type:          q.Type,
			HasLogic:      len(q.LogicRules) > 0,
			IsConditional: conditional,
		})
	}

	for _, q := range p.questions {
		for _, r := range q.LogicRules {
			m.Edges = append(m.Edges, domain.LogicEdge{
				ID:             r.ID,
				SourceID:       r.SourceQuestionID,
				TargetID:       r.TargetQuestionID,
				Operator:       r.Operator,
				ConditionValue: r.Value(),
				Action:         r.Action,
				Label:          r.Label(),
			})
		}
	}

	return m
}
