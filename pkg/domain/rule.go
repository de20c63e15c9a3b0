package domain

import (
	"fmt"
	"sort"
)

// LogicRule is a condition on one question's answer plus the effect it has when it holds.
//
// SourceQuestionID names the question whose answer is tested. TargetQuestionID is the
// question the rule applies to for Show, Hide and EndSurvey, and the destination for
// Skip and JumpTo. Rules are read-only input to evaluation.
type LogicRule struct {
	ID               string   `json:"id" yaml:"id"`
	SourceQuestionID string   `json:"sourceQuestionId" yaml:"source"`
	Operator         Operator `json:"operator" yaml:"operator"`
	ConditionValue   *string  `json:"conditionValue,omitempty" yaml:"value,omitempty"`
	Action           Action   `json:"action" yaml:"action"`
	TargetQuestionID string   `json:"targetQuestionId,omitempty" yaml:"target,omitempty"`
	Order            int      `json:"order" yaml:"order"`
}

// Value returns the condition value, or "" when absent.
func (r LogicRule) Value() string {
	if r.ConditionValue == nil {
		return ""
	}
	return *r.ConditionValue
}

// Label is a short human readable form used by logic maps and logs.
func (r LogicRule) Label() string {
	if r.Operator.IsPresence() {
		return fmt.Sprintf("%s %s", r.Operator, r.Action)
	}
	return fmt.Sprintf("%s %q %s", r.Operator, r.Value(), r.Action)
}

// StrPtr returns a pointer to s. Handy for building condition values.
func StrPtr(s string) *string { return &s }

// SortRules orders rules by ascending Order. Ties keep their input order.
func SortRules(rules []LogicRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Order < rules[j].Order
	})
}

// ReorderRules assigns Order by the position of each id in ids. Rules not named keep
// their relative order and are placed after the named ones. It returns a new slice.
func ReorderRules(rules []LogicRule, ids []string) ([]LogicRule, error) {
	index := make(map[string]int, len(rules))
	for i, r := range rules {
		index[r.ID] = i
	}

	out := make([]LogicRule, 0, len(rules))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		i, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate rule id in order: %s", id)
		}
		seen[id] = true
		out = append(out, rules[i])
	}

	rest := make([]LogicRule, 0, len(rules)-len(out))
	for _, r := range rules {
		if !seen[r.ID] {
			rest = append(rest, r)
		}
	}
	SortRules(rest)
	out = append(out, rest...)

	for i := range out {
		out[i].Order = i
	}
	return out, nil
}
