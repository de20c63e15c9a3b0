package schema

import (
	"strings"

	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/shopspring/decimal"
)

// Check inspects a non-empty answer for one question type and returns every problem found.
type Check func(q domain.Question, a domain.Answer) []error

// DefaultRatingScale bounds rating answers when the question lists no options.
const DefaultRatingScale = 5

func builtinChecks() map[domain.QuestionType]Check {
	return map[domain.QuestionType]Check{
		domain.TypeText:           checkText,
		domain.TypeLongText:       checkText,
		domain.TypeNumber:         checkNumber,
		domain.TypeSingleChoice:   checkSingleChoice,
		domain.TypeMultipleChoice: checkMultipleChoice,
		domain.TypeRating:         checkRating,
		domain.TypeMatrix:         checkMatrix,
		domain.TypeFile:           checkFiles,
	}
}

func checkText(q domain.Question, a domain.Answer) []error {
	if a.Kind != domain.KindText && a.Kind != domain.KindNumber {
		return []error{fail(q.ID, "expected text, got %s", a.Kind)}
	}
	return nil
}

func numeric(a domain.Answer) (decimal.Decimal, bool) {
	switch a.Kind {
	case domain.KindNumber:
		return a.Number, true
	case domain.KindText:
		d, err := domain.ParseNumber(a.Text)
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

func checkNumber(q domain.Question, a domain.Answer) []error {
	if _, ok := numeric(a); !ok {
		return []error{fail(q.ID, "expected a number")}
	}
	return nil
}

func checkSingleChoice(q domain.Question, a domain.Answer) []error {
	var choice string
	switch {
	case a.Kind == domain.KindText:
		choice = a.Text
	case a.Kind == domain.KindChoices && len(a.Choices) == 1:
		choice = a.Choices[0]
	default:
		return []error{fail(q.ID, "expected exactly one choice")}
	}
	if !allowed(q.Options, choice) {
		return []error{fail(q.ID, "%q is not an option", choice)}
	}
	return nil
}

func checkMultipleChoice(q domain.Question, a domain.Answer) []error {
	if a.Kind != domain.KindChoices {
		return []error{fail(q.ID, "expected a list of choices, got %s", a.Kind)}
	}
	var errs []error
	seen := make(map[string]bool, len(a.Choices))
	for _, c := range a.Choices {
		if seen[c] {
			errs = append(errs, fail(q.ID, "%q chosen twice", c))
			continue
		}
		seen[c] = true
		if !allowed(q.Options, c) {
			errs = append(errs, fail(q.ID, "%q is not an option", c))
		}
	}
	return errs
}

func checkRating(q domain.Question, a domain.Answer) []error {
	if len(q.Options) > 0 {
		return checkSingleChoice(q, a)
	}
	d, ok := numeric(a)
	if !ok || !d.IsInteger() {
		return []error{fail(q.ID, "expected a whole number rating")}
	}
	if d.LessThan(decimal.NewFromInt(1)) || d.GreaterThan(decimal.NewFromInt(DefaultRatingScale)) {
		return []error{fail(q.ID, "rating %s outside 1..%d", d, DefaultRatingScale)}
	}
	return nil
}

func checkMatrix(q domain.Question, a domain.Answer) []error {
	if a.Kind != domain.KindMatrix {
		return []error{fail(q.ID, "expected row answers, got %s", a.Kind)}
	}
	var errs []error
	for _, row := range a.MatrixRows() {
		if len(q.Rows) > 0 && !allowed(q.Rows, row) {
			errs = append(errs, fail(q.ID, "unknown row %q", row))
			continue
		}
		if col := a.Matrix[row]; !allowed(q.Options, col) {
			errs = append(errs, fail(q.ID, "row %q: %q is not an option", row, col))
		}
	}
	if q.Required {
		for _, row := range q.Rows {
			if strings.TrimSpace(a.Matrix[row]) == "" {
				errs = append(errs, &ValidationError{QuestionID: q.ID, Reason: "row " + row + " unanswered", Err: ErrRequired})
			}
		}
	}
	return errs
}

func checkFiles(q domain.Question, a domain.Answer) []error {
	if a.Kind != domain.KindFiles {
		return []error{fail(q.ID, "expected uploaded files, got %s", a.Kind)}
	}
	var errs []error
	for i, f := range a.Files {
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, fail(q.ID, "file %d has no name", i+1))
		}
		if f.Size < 0 {
			errs = append(errs, fail(q.ID, "file %q has negative size", f.Name))
		}
	}
	return errs
}

// allowed reports whether v is one of options. No options means anything goes.
func allowed(options []string, v string) bool {
	if len(options) == 0 {
		return true
	}
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
