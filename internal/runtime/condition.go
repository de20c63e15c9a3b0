package runtime

import (
	"strings"

	"github.com/aretw0/surveylogic/pkg/domain"
)

// Evaluate tests an answer against an operator and an optional literal.
// It is total: unknown operators and incomparable values yield false.
func Evaluate(answer domain.Answer, op domain.Operator, value *string) bool {
	literal := ""
	if value != nil {
		literal = *value
	}

	switch op {
	case domain.OpIsAnswered, domain.OpIsNotEmpty:
		return IsAnswered(answer)
	case domain.OpIsNotAnswered, domain.OpIsEmpty:
		return !IsAnswered(answer)
	case domain.OpEquals:
		return equals(answer, literal)
	case domain.OpNotEquals:
		return !equals(answer, literal)
	case domain.OpContains:
		return containsFold(Normalize(answer), literal)
	case domain.OpNotContains:
		return !containsFold(Normalize(answer), literal)
	case domain.OpGreaterThan:
		cmp, ok := CompareNumeric(Normalize(answer), literal)
		return ok && cmp > 0
	case domain.OpLessThan:
		cmp, ok := CompareNumeric(Normalize(answer), literal)
		return ok && cmp < 0
	case domain.OpGreaterThanOrEquals:
		cmp, ok := CompareNumeric(Normalize(answer), literal)
		return ok && cmp >= 0
	case domain.OpLessThanOrEquals:
		cmp, ok := CompareNumeric(Normalize(answer), literal)
		return ok && cmp <= 0
	default:
		return false
	}
}

// equals matches a multi-select answer when any selected value equals the literal.
func equals(answer domain.Answer, literal string) bool {
	if answer.Kind == domain.KindChoices {
		for _, c := range answer.Choices {
			if strings.EqualFold(c, literal) {
				return true
			}
		}
		return false
	}
	return strings.EqualFold(Normalize(answer), literal)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
