package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// AnswerKind tags the shape held by an Answer.
type AnswerKind int

const (
	KindEmpty AnswerKind = iota
	KindText
	KindNumber
	KindChoices
	KindMatrix
	KindFiles
)

func (k AnswerKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindChoices:
		return "choices"
	case KindMatrix:
		return "matrix"
	case KindFiles:
		return "files"
	default:
		return "empty"
	}
}

// FileRef points at an uploaded file. Files are opaque to the logic engine.
type FileRef struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
	Size int64  `json:"size,omitempty" yaml:"size,omitempty"`
}

// Answer is the value a respondent gave to one question.
// Only the field matching Kind is meaningful.
type Answer struct {
	Kind    AnswerKind
	Text    string
	Number  decimal.Decimal
	Choices []string
	Matrix  map[string]string
	Files   []FileRef
}

// Answers maps question ids to answers. A missing key is the same as Empty.
type Answers map[string]Answer

// Get returns the answer for a question, or Empty.
func (a Answers) Get(questionID string) Answer {
	if a == nil {
		return Answer{}
	}
	return a[questionID]
}

// Clone returns a deep copy.
func (a Answers) Clone() Answers {
	if a == nil {
		return Answers{}
	}
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v.Clone()
	}
	return out
}

// Empty returns the absent answer.
func Empty() Answer { return Answer{} }

// Text returns a free-text answer.
func Text(s string) Answer { return Answer{Kind: KindText, Text: s} }

// Number returns a numeric answer.
func Number(d decimal.Decimal) Answer { return Answer{Kind: KindNumber, Number: d} }

// Float is a convenience for Number(decimal.NewFromFloat(f)).
func Float(f float64) Answer { return Number(decimal.NewFromFloat(f)) }

// Choices returns a multi-select answer holding a copy of values.
func Choices(values ...string) Answer {
	return Answer{Kind: KindChoices, Choices: append([]string{}, values...)}
}

// Matrix returns a grid answer mapping row labels to column labels.
func Matrix(rows map[string]string) Answer {
	m := make(map[string]string, len(rows))
	for k, v := range rows {
		m[k] = v
	}
	return Answer{Kind: KindMatrix, Matrix: m}
}

// Files returns a file-upload answer.
func Files(refs ...FileRef) Answer {
	return Answer{Kind: KindFiles, Files: append([]FileRef{}, refs...)}
}

// IsEmpty reports whether the answer carries no value at all.
func (a Answer) IsEmpty() bool { return a.Kind == KindEmpty }

// Clone returns a deep copy of the answer.
func (a Answer) Clone() Answer {
	out := a
	if a.Choices != nil {
		out.Choices = append([]string{}, a.Choices...)
	}
	if a.Matrix != nil {
		out.Matrix = make(map[string]string, len(a.Matrix))
		for k, v := range a.Matrix {
			out.Matrix[k] = v
		}
	}
	if a.Files != nil {
		out.Files = append([]FileRef{}, a.Files...)
	}
	return out
}

// Equal compares two answers by kind and value.
func (a Answer) Equal(b Answer) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindText:
		return a.Text == b.Text
	case KindNumber:
		return a.Number.Equal(b.Number)
	case KindChoices:
		if len(a.Choices) != len(b.Choices) {
			return false
		}
		for i := range a.Choices {
			if a.Choices[i] != b.Choices[i] {
				return false
			}
		}
		return true
	case KindMatrix:
		if len(a.Matrix) != len(b.Matrix) {
			return false
		}
		for k, v := range a.Matrix {
			if bv, ok := b.Matrix[k]; !ok || bv != v {
				return false
			}
		}
		return true
	case KindFiles:
		if len(a.Files) != len(b.Files) {
			return false
		}
		for i := range a.Files {
			if a.Files[i] != b.Files[i] {
				return false
			}
		}
		return true
	}
	return true
}

// MatrixRows returns the matrix row labels in sorted order.
func (a Answer) MatrixRows() []string {
	rows := make([]string, 0, len(a.Matrix))
	for k := range a.Matrix {
		rows = append(rows, k)
	}
	sort.Strings(rows)
	return rows
}

// MarshalJSON writes the natural JSON shape of the answer.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindText:
		return json.Marshal(a.Text)
	case KindNumber:
		return []byte(a.Number.String()), nil
	case KindChoices:
		if a.Choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Choices)
	case KindMatrix:
		if a.Matrix == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(a.Matrix)
	case KindFiles:
		if a.Files == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Files)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, a string, a number, an array of strings, an array
// of file objects, or an object of row to column labels.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Text(s)
		return nil
	case '[':
		return a.unmarshalList(data)
	case '{':
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		rows := make(map[string]string, len(raw))
		for k, v := range raw {
			rows[k] = scalarString(v)
		}
		*a = Answer{Kind: KindMatrix, Matrix: rows}
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*a = Text(fmt.Sprint(b))
		return nil
	default:
		d, err := ParseNumber(string(data))
		if err != nil {
			return fmt.Errorf("invalid answer number %s: %w", data, err)
		}
		*a = Number(d)
		return nil
	}
}

func (a *Answer) unmarshalList(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if len(items) > 0 && bytes.HasPrefix(bytes.TrimSpace(items[0]), []byte("{")) {
		var files []FileRef
		if err := json.Unmarshal(data, &files); err != nil {
			return fmt.Errorf("invalid file list: %w", err)
		}
		*a = Answer{Kind: KindFiles, Files: files}
		return nil
	}

	choices := make([]string, 0, len(items))
	for _, item := range items {
		var v any
		if err := json.Unmarshal(item, &v); err != nil {
			return err
		}
		choices = append(choices, scalarString(v))
	}
	*a = Answer{Kind: KindChoices, Choices: choices}
	return nil
}

// FromValue converts a loosely typed value (decoded YAML, JSON or form input)
// into an Answer.
func FromValue(v any) (Answer, error) {
	switch val := v.(type) {
	case nil:
		return Answer{}, nil
	case Answer:
		return val, nil
	case string:
		return Text(val), nil
	case bool:
		return Text(fmt.Sprint(val)), nil
	case int:
		return Number(decimal.NewFromInt(int64(val))), nil
	case int64:
		return Number(decimal.NewFromInt(val)), nil
	case float64:
		return Float(val), nil
	case json.Number:
		d, err := ParseNumber(val.String())
		if err != nil {
			return Answer{}, err
		}
		return Number(d), nil
	case []string:
		return Choices(val...), nil
	case map[string]string:
		return Matrix(val), nil
	case []FileRef:
		return Files(val...), nil
	}

	// Fall back to the JSON codec for nested generic shapes.
	data, err := json.Marshal(v)
	if err != nil {
		return Answer{}, fmt.Errorf("unsupported answer value %T: %w", v, err)
	}
	var a Answer
	if err := a.UnmarshalJSON(data); err != nil {
		return Answer{}, err
	}
	return a, nil
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return decimal.NewFromFloat(val).String()
	default:
		return fmt.Sprint(val)
	}
}
