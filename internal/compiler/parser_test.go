package compiler_test

import (
	"testing"

	"github.com/aretw0/surveylogic/internal/compiler"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_TargetedShape(t *testing.T) {
	doc := `
id: onboarding
title: Onboarding
questions:
  - id: q1
    text: Do you drive?
    type: single_choice
    options: ["yes", "no"]
  - id: q2
    text: Which car?
    logic:
      - source: q1
        operator: equals
        value: "yes"
        action: show
      - source: q1
        operator: is_not_answered
        action: hide
        priority: 0
`
	survey, err := compiler.NewParser().Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "onboarding", survey.ID)
	require.Len(t, survey.Questions, 2)
	assert.Equal(t, 0, survey.Questions[0].Order)
	assert.Equal(t, 1, survey.Questions[1].Order)
	assert.Equal(t, []string{"yes", "no"}, survey.Questions[0].Options)

	rules := survey.Questions[1].LogicRules
	require.Len(t, rules, 2)
	assert.Equal(t, "q1", rules[0].SourceQuestionID)
	assert.Equal(t, "q2", rules[0].TargetQuestionID)
	assert.Equal(t, domain.OpEquals, rules[0].Operator)
	assert.Equal(t, domain.ActionShow, rules[0].Action)
	assert.Equal(t, "yes", rules[0].Value())
	assert.NotEmpty(t, rules[0].ID)

	assert.Equal(t, domain.OpIsNotAnswered, rules[1].Operator)
	assert.Nil(t, rules[1].ConditionValue)
	assert.Equal(t, 0, rules[1].Order)
}

func TestParser_SourcedShapeJSON(t *testing.T) {
	doc := `{
  "id": "s1",
  "questions": [
    {"id": "q1", "order": 10, "logicRules": [
      {"id": "r1", "operator": 0, "conditionValue": "yes", "action": 0, "targetQuestionId": "q2", "order": 1},
      {"id": "r2", "operator": "GreaterThan", "conditionValue": 5, "action": "JumpTo", "targetQuestionId": "q3", "order": 2}
    ]},
    {"id": "q2", "order": 20},
    {"id": "q3", "order": 30}
  ]
}`
	survey, err := compiler.NewParser().Parse([]byte(doc))
	require.NoError(t, err)

	rules := survey.Questions[0].LogicRules
	require.Len(t, rules, 2)
	assert.Equal(t, "q1", rules[0].SourceQuestionID, "source defaults to the owning question")
	assert.Equal(t, "q2", rules[0].TargetQuestionID)
	assert.Equal(t, "5", rules[1].Value())
	assert.Equal(t, domain.ActionJumpTo, rules[1].Action)
	assert.Equal(t, 10, survey.Questions[0].Order)
}

func TestParser_LegacyTargetAliases(t *testing.T) {
	doc := `
questions:
  - id: a
    rules:
      - {operator: is_answered, action: jump_to, jump_to: c}
      - {operator: is_answered, action: skip, to: b}
      - {operator: is_answered, action: show, target_question_id: c, source_question_id: b}
  - id: b
  - id: c
`
	survey, err := compiler.NewParser().Parse([]byte(doc))
	require.NoError(t, err)

	rules := survey.Questions[0].LogicRules
	assert.Equal(t, "c", rules[0].TargetQuestionID)
	assert.Equal(t, "b", rules[1].TargetQuestionID)
	assert.Equal(t, "c", rules[2].TargetQuestionID)
	assert.Equal(t, "b", rules[2].SourceQuestionID)
}

func TestParser_GeneratedIDsAreStable(t *testing.T) {
	doc := []byte("questions:\n  - id: a\n    logic:\n      - {operator: is_answered, action: hide}\n")
	s1, err := compiler.NewParser().Parse(doc)
	require.NoError(t, err)
	s2, err := compiler.NewParser().Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, s1.Questions[0].LogicRules[0].ID, s2.Questions[0].LogicRules[0].ID)
}

func TestParser_UnknownOperatorIsKept(t *testing.T) {
	doc := []byte("questions:\n  - id: a\n    logic:\n      - {operator: regex, value: x, action: teleport}\n")
	survey, err := compiler.NewParser().Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, domain.OpUnknown, survey.Questions[0].LogicRules[0].Operator)
	assert.Equal(t, domain.ActionUnknown, survey.Questions[0].LogicRules[0].Action)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Invalid YAML", "questions: [\n"},
		{"Empty", ""},
		{"Missing Question ID", "questions:\n  - text: hi\n"},
		{"Non Scalar Operator", "questions:\n  - id: a\n    logic:\n      - {operator: [x], action: show}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compiler.NewParser().Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestCanonicalize(t *testing.T) {
	in := []domain.Question{{
		ID: "q",
		LogicRules: []domain.LogicRule{
			{Action: domain.ActionEndSurvey},
			{Action: domain.ActionJumpTo},
		},
	}}
	out := compiler.Canonicalize(in)

	assert.Equal(t, "q", out[0].LogicRules[0].SourceQuestionID)
	assert.Equal(t, "q", out[0].LogicRules[0].TargetQuestionID)
	assert.Equal(t, "", out[0].LogicRules[1].TargetQuestionID)
	assert.Equal(t, "", in[0].LogicRules[0].SourceQuestionID, "input is not mutated")
}
