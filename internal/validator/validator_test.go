package validator

import (
	"strings"
	"testing"

	"github.com/aretw0/surveylogic/internal/compiler"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, doc string) []domain.Question {
	t.Helper()
	s, err := compiler.NewParser().Parse([]byte(doc))
	require.NoError(t, err)
	return s.Questions
}

func messages(issues []Issue) string {
	var b strings.Builder
	for _, i := range issues {
		b.WriteString(i.String())
		b.WriteString("\n")
	}
	return b.String()
}

func TestValidate_CleanSurvey(t *testing.T) {
	qs := parse(t, `
questions:
  - id: q1
  - id: q2
    logic:
      - {id: r1, source: q1, operator: equals, value: "yes", action: show}
  - id: q3
  - id: q4
    logic:
      - {id: r2, source: q1, operator: is_answered, action: jump_to, target: q3}
`)
	issues := Validate(qs)
	assert.Empty(t, issues, messages(issues))
	assert.NoError(t, Err(issues))
}

func TestValidate_Problems(t *testing.T) {
	qs := parse(t, `
questions:
  - id: q1
    logic:
      - {id: missing-value, source: q1, operator: equals, action: end_survey}
      - {id: no-target, operator: is_answered, action: jump_to}
      - {id: negative, operator: is_answered, action: end_survey, order: -1}
      - {id: ghost-target, operator: is_answered, action: skip, target: nowhere}
      - {id: future, operator: regex, value: x, action: teleport}
  - id: q2
    logic:
      - {id: ghost-source, source: nobody, operator: is_answered, action: hide}
      - {id: backwards, source: q3, operator: is_answered, action: show}
      - {id: self, source: q2, operator: is_answered, action: hide}
  - id: q3
  - id: q3
`)
	issues := Validate(qs)
	out := messages(issues)

	for _, want := range []string{
		"q1/missing-value: operator Equals requires a condition value",
		"q1/no-target: action JumpTo requires a target question",
		"q1/negative: order must be >= 0",
		`q1/ghost-target: target question "nowhere" does not exist`,
		"q1/future: unknown operator",
		"q1/future: unknown action",
		`q2/ghost-source: source question "nobody" does not exist`,
		`q2/backwards: condition tests "q3" which is displayed after "q2"`,
		"q2/self: question controls its own visibility",
		"[error] q3: duplicate question id",
	} {
		assert.Contains(t, out, want)
	}

	err := Err(issues)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 4 errors")
}
