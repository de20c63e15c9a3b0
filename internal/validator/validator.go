package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/surveylogic/pkg/domain"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found in a survey's rules.
type Issue struct {
	Severity   Severity `json:"severity"`
	QuestionID string   `json:"questionId"`
	RuleID     string   `json:"ruleId,omitempty"`
	Message    string   `json:"message"`
}

func (i Issue) String() string {
	if i.RuleID == "" {
		return fmt.Sprintf("[%s] %s: %s", i.Severity, i.QuestionID, i.Message)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", i.Severity, i.QuestionID, i.RuleID, i.Message)
}

// Validate checks canonical questions for broken references and malformed rules.
// Issues never stop evaluation; the engine degrades them to no-ops.
func Validate(questions []domain.Question) []Issue {
	var issues []Issue

	position := make(map[string]int, len(questions))
	sorted := domain.SortQuestions(questions)
	for i, q := range sorted {
		if _, dup := position[q.ID]; dup {
			issues = append(issues, Issue{SeverityError, q.ID, "", "duplicate question id"})
			continue
		}
		position[q.ID] = i
	}

	for _, q := range sorted {
		for _, r := range q.LogicRules {
			add := func(sev Severity, format string, args ...any) {
				issues = append(issues, Issue{sev, q.ID, r.ID, fmt.Sprintf(format, args...)})
			}

			if !r.Operator.Known() {
				add(SeverityWarning, "unknown operator, rule never fires")
			}
			if !r.Action.Known() {
				add(SeverityWarning, "unknown action, rule has no effect")
			}
			if r.Order < 0 {
				add(SeverityError, "order must be >= 0, got %d", r.Order)
			}
			if r.Operator.Known() && !r.Operator.IsPresence() && r.ConditionValue == nil {
				add(SeverityError, "operator %s requires a condition value", r.Operator)
			}
			if r.Action.NeedsTarget() && r.TargetQuestionID == "" {
				add(SeverityError, "action %s requires a target question", r.Action)
			}

			srcPos, srcOK := position[r.SourceQuestionID]
			if !srcOK {
				add(SeverityWarning, "source question %q does not exist, its answer reads as empty", r.SourceQuestionID)
			}
			tgtPos, tgtOK := position[r.TargetQuestionID]
			if r.TargetQuestionID != "" && !tgtOK {
				add(SeverityWarning, "target question %q does not exist, rule is dropped", r.TargetQuestionID)
			}

			if r.Action.IsVisibility() && srcOK && tgtOK {
				switch {
				case srcPos == tgtPos:
					add(SeverityWarning, "question controls its own visibility")
				case srcPos > tgtPos:
					add(SeverityWarning, "condition tests %q which is displayed after %q", r.SourceQuestionID, r.TargetQuestionID)
				}
			}
		}
	}
	return issues
}

// Err folds error-severity issues into a single error, or returns nil.
func Err(issues []Issue) error {
	var errs []string
	for _, i := range issues {
		if i.Severity == SeverityError {
			errs = append(errs, i.String())
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(errs, "\n- "))
}
