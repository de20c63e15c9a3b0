package dsl_test

import (
	"context"
	"testing"

	"github.com/aretw0/surveylogic"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onboarding() *dsl.Builder {
	b := dsl.New("onboarding").Title("Onboarding")

	b.Add("role").
		Question("What is your role?").
		Choice("developer", "manager").
		Required()

	b.Add("language").
		Question("Which language do you use most?").
		ShowIf("role", domain.OpEquals, "developer")

	b.Add("team_size").
		Question("How many people report to you?").
		Type(domain.TypeNumber).
		HideIf("role", domain.OpNotEquals, "manager").
		EndIf("team_size", domain.OpGreaterThan, "500")

	return b
}

func TestBuilder_Survey(t *testing.T) {
	s := onboarding().Survey()

	assert.Equal(t, "Onboarding", s.Title)
	require.Len(t, s.Questions, 3)
	assert.Equal(t, []string{"role", "language", "team_size"}, domain.QuestionIDs(s.Questions))
	assert.Equal(t, 2, s.Questions[1].Order)
	assert.True(t, s.Questions[0].Required)
	assert.Equal(t, domain.TypeSingleChoice, s.Questions[0].Type)

	rules := s.Questions[2].LogicRules
	require.Len(t, rules, 2)
	assert.Equal(t, "team_size-1", rules[0].ID)
	assert.Equal(t, domain.ActionHide, rules[0].Action)
	assert.Equal(t, "team_size", rules[0].TargetQuestionID)
	assert.Equal(t, "manager", *rules[0].ConditionValue)
	assert.Equal(t, 1, rules[1].Order)
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := dsl.New("s")
	b.Add("q1").Question("first")
	b.Add("q1").Required()

	s := b.Survey()
	require.Len(t, s.Questions, 1)
	assert.Equal(t, "first", s.Questions[0].Text)
	assert.True(t, s.Questions[0].Required)
}

func TestBuilder_PresenceOperatorsHaveNoValue(t *testing.T) {
	b := dsl.New("s")
	b.Add("q1").SkipTo("q3", domain.OpIsEmpty, "ignored")
	b.Add("q2")
	b.Add("q3")

	r := b.Survey().Questions[0].LogicRules[0]
	assert.Nil(t, r.ConditionValue)
	assert.Equal(t, "q1", r.SourceQuestionID)
	assert.Equal(t, "q3", r.TargetQuestionID)
}

func TestBuilder_BuildEvaluates(t *testing.T) {
	loader, err := onboarding().Build()
	require.NoError(t, err)

	eng, err := surveylogic.New("", surveylogic.WithLoader(loader))
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := eng.Evaluate(ctx, "onboarding", domain.EvaluateRequest{
		Answers: []domain.AnswerEntry{{QuestionID: "role", Value: domain.Text("developer")}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"role", "language"}, resp.VisibleQuestionIDs)
	assert.False(t, resp.ShouldEndSurvey)

	resp, err = eng.Evaluate(ctx, "onboarding", domain.EvaluateRequest{
		Answers: []domain.AnswerEntry{
			{QuestionID: "role", Value: domain.Text("manager")},
			{QuestionID: "team_size", Value: domain.Float(600)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"role", "team_size"}, resp.VisibleQuestionIDs)
	assert.True(t, resp.ShouldEndSurvey)
}

func TestBuilder_RequiresID(t *testing.T) {
	_, err := dsl.New("").Build()
	assert.Error(t, err)
}
