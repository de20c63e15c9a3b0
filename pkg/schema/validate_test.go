package schema_test

import (
	"errors"
	"testing"

	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Required(t *testing.T) {
	v := schema.NewValidator()
	q := domain.Question{ID: "name", Type: domain.TypeText, Required: true}

	err := v.Validate(q, domain.Text("   "))
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrRequired))

	assert.NoError(t, v.Validate(q, domain.Text("Ada")))

	q.Required = false
	assert.NoError(t, v.Validate(q, domain.Empty()), "optional questions may stay empty")
}

func TestValidate_ByType(t *testing.T) {
	v := schema.NewValidator()
	colors := []string{"red", "green", "blue"}

	tests := []struct {
		name    string
		q       domain.Question
		answer  domain.Answer
		wantErr bool
	}{
		{"number from text", domain.Question{ID: "n", Type: domain.TypeNumber}, domain.Text(" 42.5 "), false},
		{"number rejects words", domain.Question{ID: "n", Type: domain.TypeNumber}, domain.Text("many"), true},
		{"number rejects huge exponent", domain.Question{ID: "n", Type: domain.TypeNumber}, domain.Text("1e100000000"), true},
		{"rating rejects huge exponent", domain.Question{ID: "r", Type: domain.TypeRating}, domain.Text("9e-100000000"), true},
		{"single choice ok", domain.Question{ID: "c", Type: domain.TypeSingleChoice, Options: colors}, domain.Text("red"), false},
		{"single choice unknown", domain.Question{ID: "c", Type: domain.TypeSingleChoice, Options: colors}, domain.Text("pink"), true},
		{"single choice two picks", domain.Question{ID: "c", Type: domain.TypeSingleChoice, Options: colors}, domain.Choices("red", "blue"), true},
		{"multiple choice ok", domain.Question{ID: "m", Type: domain.TypeMultipleChoice, Options: colors}, domain.Choices("red", "blue"), false},
		{"multiple choice duplicate", domain.Question{ID: "m", Type: domain.TypeMultipleChoice, Options: colors}, domain.Choices("red", "red"), true},
		{"multiple choice wrong kind", domain.Question{ID: "m", Type: domain.TypeMultipleChoice}, domain.Text("red"), true},
		{"rating in scale", domain.Question{ID: "r", Type: domain.TypeRating}, domain.Float(4), false},
		{"rating out of scale", domain.Question{ID: "r", Type: domain.TypeRating}, domain.Float(9), true},
		{"rating fractional", domain.Question{ID: "r", Type: domain.TypeRating}, domain.Float(2.5), true},
		{"matrix ok", domain.Question{ID: "g", Type: domain.TypeMatrix, Rows: []string{"speed"}, Options: []string{"good", "bad"}}, domain.Matrix(map[string]string{"speed": "good"}), false},
		{"matrix unknown row", domain.Question{ID: "g", Type: domain.TypeMatrix, Rows: []string{"speed"}}, domain.Matrix(map[string]string{"price": "good"}), true},
		{"files ok", domain.Question{ID: "f", Type: domain.TypeFile}, domain.Files(domain.FileRef{Name: "cv.pdf", Size: 10}), false},
		{"files unnamed", domain.Question{ID: "f", Type: domain.TypeFile}, domain.Files(domain.FileRef{Size: 10}), true},
		{"unknown type passes", domain.Question{ID: "x", Type: "signature"}, domain.Text("anything"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.q, tt.answer)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_MatrixRequiresEveryRow(t *testing.T) {
	v := schema.NewValidator()
	q := domain.Question{ID: "g", Type: domain.TypeMatrix, Required: true, Rows: []string{"speed", "price"}}

	err := v.Validate(q, domain.Matrix(map[string]string{"speed": "ok"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrRequired)
	assert.Len(t, schema.ValidationErrors(err), 1)
}

func TestValidateAll_OnlyListedQuestions(t *testing.T) {
	v := schema.NewValidator()
	questions := []domain.Question{
		{ID: "q1", Type: domain.TypeText, Required: true},
		{ID: "q2", Type: domain.TypeNumber, Required: true},
		{ID: "q3", Type: domain.TypeText, Required: true},
	}
	answers := domain.Answers{"q2": domain.Text("abc")}

	// q3 is hidden, so it is not listed.
	err := v.ValidateAll(questions, []string{"q1", "q2"}, answers)
	require.Error(t, err)

	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), `"q1"`)
	assert.Contains(t, errs[1].Error(), `"q2"`)
}

func TestRegister_CustomType(t *testing.T) {
	v := schema.NewValidator()
	v.Register("email", func(q domain.Question, a domain.Answer) []error {
		if a.Kind != domain.KindText || len(a.Text) < 3 {
			return []error{&schema.ValidationError{QuestionID: q.ID, Reason: "bad email"}}
		}
		return nil
	})

	q := domain.Question{ID: "mail", Type: "email"}
	assert.Error(t, v.Validate(q, domain.Text("a")))
	assert.NoError(t, v.Validate(q, domain.Text("a@b.c")))
}
