package compiler

import (
	"fmt"

	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/google/uuid"
)

// ruleNamespace seeds generated rule ids so the same document always yields the same ids.
var ruleNamespace = uuid.MustParse("6f1c3b8e-4a57-4c39-9d0e-2f1b7f0c9a11")

// Canonicalize returns a copy of questions whose rules all carry an explicit source
// and, where one applies, an explicit target.
//
// A rule with no source tests the question it is declared under. Show, Hide and
// EndSurvey rules with no target apply to the question they are declared under.
// Skip and JumpTo keep their destination as given; without one they are inert.
func Canonicalize(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		cq := q
		cq.LogicRules = make([]domain.LogicRule, len(q.LogicRules))
		for j, r := range q.LogicRules {
			if r.SourceQuestionID == "" {
				r.SourceQuestionID = q.ID
			}
			if r.TargetQuestionID == "" && !r.Action.NeedsTarget() {
				r.TargetQuestionID = q.ID
			}
			if r.ID == "" {
				r.ID = uuid.NewSHA1(ruleNamespace, []byte(fmt.Sprintf("%s#%d", q.ID, j))).String()
			}
			cq.LogicRules[j] = r
		}
		out[i] = cq
	}
	return out
}
