package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperator(t *testing.T) {
	tests := map[string]Operator{
		"Equals":           OpEquals,
		"equals":           OpEquals,
		"not_equals":       OpNotEquals,
		"is-answered":      OpIsAnswered,
		"IsNotEmpty":       OpIsNotEmpty,
		"gte":              OpGreaterThanOrEquals,
		"0":                OpEquals,
		"11":               OpIsNotEmpty,
		"42":               OpUnknown,
		"matches_regex":    OpUnknown,
		"lessthanorequals": OpLessThanOrEquals,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseOperator(in), in)
	}
}

func TestParseAction(t *testing.T) {
	assert.Equal(t, ActionJumpTo, ParseAction("jump_to"))
	assert.Equal(t, ActionEndSurvey, ParseAction("4"))
	assert.Equal(t, ActionHide, ParseAction("HIDE"))
	assert.Equal(t, ActionUnknown, ParseAction("explode"))
}

func TestLogicRule_JSONAcceptsCodesAndNames(t *testing.T) {
	var rules []LogicRule
	input := `[
		{"id":"r1","sourceQuestionId":"q1","operator":0,"conditionValue":"yes","action":0,"order":1},
		{"id":"r2","sourceQuestionId":"q1","operator":"IsAnswered","action":"JumpTo","targetQuestionId":"q4","order":2},
		{"id":"r3","sourceQuestionId":"q1","operator":"FutureOp","action":"Teleport","order":3}
	]`
	require.NoError(t, json.Unmarshal([]byte(input), &rules))

	assert.Equal(t, OpEquals, rules[0].Operator)
	assert.Equal(t, ActionShow, rules[0].Action)
	assert.Equal(t, "yes", rules[0].Value())
	assert.Equal(t, OpIsAnswered, rules[1].Operator)
	assert.Equal(t, ActionJumpTo, rules[1].Action)
	assert.Equal(t, OpUnknown, rules[2].Operator)
	assert.Equal(t, ActionUnknown, rules[2].Action)
	assert.Equal(t, "", rules[2].Value())
}

func TestReorderRules(t *testing.T) {
	rules := []LogicRule{
		{ID: "a", Order: 0},
		{ID: "b", Order: 1},
		{ID: "c", Order: 2},
	}

	out, err := ReorderRules(rules, []string{"c", "a"})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{out[0].ID, out[1].ID, out[2].ID})
	assert.Equal(t, []int{0, 1, 2}, []int{out[0].Order, out[1].Order, out[2].Order})
	assert.Equal(t, 0, rules[0].Order, "input must not be mutated")

	_, err = ReorderRules(rules, []string{"zzz"})
	assert.ErrorIs(t, err, ErrRuleNotFound)
}
