package runtime

import (
	"encoding/json"
	"strings"

	"github.com/aretw0/surveylogic/pkg/domain"
)

// IsAnswered reports whether an answer counts as present for presence operators.
func IsAnswered(a domain.Answer) bool {
	switch a.Kind {
	case domain.KindText:
		return strings.TrimSpace(a.Text) != ""
	case domain.KindNumber:
		return true
	case domain.KindChoices:
		return len(a.Choices) > 0
	case domain.KindMatrix:
		return len(a.Matrix) > 0
	case domain.KindFiles:
		return len(a.Files) > 0
	default:
		return false
	}
}

// Normalize reduces an answer to the string used by textual and numeric comparison.
// File lists never normalize to anything but "".
func Normalize(a domain.Answer) string {
	switch a.Kind {
	case domain.KindText:
		return a.Text
	case domain.KindNumber:
		return a.Number.String()
	case domain.KindChoices:
		return strings.Join(a.Choices, ",")
	case domain.KindMatrix:
		if len(a.Matrix) == 0 {
			return "{}"
		}
		// encoding/json sorts map keys, which makes the form canonical.
		data, err := json.Marshal(a.Matrix)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

// CompareNumeric parses both sides as decimals and compares them.
// ok is false when either side is not a number or is out of range.
func CompareNumeric(a, b string) (cmp int, ok bool) {
	da, err := domain.ParseNumber(a)
	if err != nil {
		return 0, false
	}
	db, err := domain.ParseNumber(b)
	if err != nil {
		return 0, false
	}
	return da.Cmp(db), true
}
