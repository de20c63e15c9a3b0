package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Operator compares a source answer against a rule's condition value.
// Numeric codes are stable and shared with stored rule data.
type Operator int

const (
	OpEquals Operator = iota
	OpNotEquals
	OpContains
	OpNotContains
	OpGreaterThan
	OpLessThan
	OpGreaterThanOrEquals
	OpLessThanOrEquals
	OpIsAnswered
	OpIsNotAnswered
	OpIsEmpty
	OpIsNotEmpty

	// OpUnknown is produced when rule data names an operator this build does not know.
	OpUnknown Operator = -1
)

var operatorNames = map[Operator]string{
	OpEquals:              "Equals",
	OpNotEquals:           "NotEquals",
	OpContains:            "Contains",
	OpNotContains:         "NotContains",
	OpGreaterThan:         "GreaterThan",
	OpLessThan:            "LessThan",
	OpGreaterThanOrEquals: "GreaterThanOrEquals",
	OpLessThanOrEquals:    "LessThanOrEquals",
	OpIsAnswered:          "IsAnswered",
	OpIsNotAnswered:       "IsNotAnswered",
	OpIsEmpty:             "IsEmpty",
	OpIsNotEmpty:          "IsNotEmpty",
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return "Unknown"
}

// Known reports whether the operator is one this build can evaluate.
func (o Operator) Known() bool {
	_, ok := operatorNames[o]
	return ok
}

// IsPresence reports whether the operator only tests for an answer being present.
// Presence operators ignore the condition value.
func (o Operator) IsPresence() bool {
	switch o {
	case OpIsAnswered, OpIsNotAnswered, OpIsEmpty, OpIsNotEmpty:
		return true
	}
	return false
}

// IsNumeric reports whether the operator compares numbers.
func (o Operator) IsNumeric() bool {
	switch o {
	case OpGreaterThan, OpLessThan, OpGreaterThanOrEquals, OpLessThanOrEquals:
		return true
	}
	return false
}

// ParseOperator maps a name or numeric code to an Operator.
// Names are matched ignoring case, underscores and dashes.
func ParseOperator(s string) Operator {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if _, ok := operatorNames[Operator(n)]; ok {
			return Operator(n)
		}
		return OpUnknown
	}
	key := foldName(s)
	for op, name := range operatorNames {
		if foldName(name) == key {
			return op
		}
	}
	switch key {
	case "eq", "==":
		return OpEquals
	case "ne", "neq", "!=":
		return OpNotEquals
	case "gt", ">":
		return OpGreaterThan
	case "lt", "<":
		return OpLessThan
	case "gte", ">=":
		return OpGreaterThanOrEquals
	case "lte", "<=":
		return OpLessThanOrEquals
	}
	return OpUnknown
}

func (o Operator) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Operator) UnmarshalJSON(data []byte) error {
	*o = ParseOperator(unquote(data))
	return nil
}

func (o Operator) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Operator) UnmarshalText(text []byte) error {
	*o = ParseOperator(string(text))
	return nil
}

// Action is the effect of a fired logic rule.
type Action int

const (
	ActionShow Action = iota
	ActionHide
	ActionSkip
	ActionJumpTo
	ActionEndSurvey

	// ActionUnknown is a no-op placeholder for actions this build does not know.
	ActionUnknown Action = -1
)

var actionNames = map[Action]string{
	ActionShow:      "Show",
	ActionHide:      "Hide",
	ActionSkip:      "Skip",
	ActionJumpTo:    "JumpTo",
	ActionEndSurvey: "EndSurvey",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

// Known reports whether the action is one this build can apply.
func (a Action) Known() bool {
	_, ok := actionNames[a]
	return ok
}

// IsVisibility reports whether the action toggles visibility.
func (a Action) IsVisibility() bool { return a == ActionShow || a == ActionHide }

// IsDirective reports whether the action is a navigation directive.
func (a Action) IsDirective() bool {
	return a == ActionSkip || a == ActionJumpTo || a == ActionEndSurvey
}

// NeedsTarget reports whether the action requires a destination question.
func (a Action) NeedsTarget() bool { return a == ActionSkip || a == ActionJumpTo }

// ParseAction maps a name or numeric code to an Action.
func ParseAction(s string) Action {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if _, ok := actionNames[Action(n)]; ok {
			return Action(n)
		}
		return ActionUnknown
	}
	key := foldName(s)
	for act, name := range actionNames {
		if foldName(name) == key {
			return act
		}
	}
	switch key {
	case "jump", "goto":
		return ActionJumpTo
	case "end", "endsurvey", "terminate":
		return ActionEndSurvey
	}
	return ActionUnknown
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Action) UnmarshalJSON(data []byte) error {
	*a = ParseAction(unquote(data))
	return nil
}

func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Action) UnmarshalText(text []byte) error {
	*a = ParseAction(string(text))
	return nil
}

func foldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

func unquote(data []byte) string {
	data = bytes.TrimSpace(data)
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	return string(data)
}
