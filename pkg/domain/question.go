package domain

import "sort"

// QuestionType identifies how a question is answered.
type QuestionType string

const (
	TypeText           QuestionType = "text"
	TypeLongText       QuestionType = "long_text"
	TypeNumber         QuestionType = "number"
	TypeSingleChoice   QuestionType = "single_choice"
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeRating         QuestionType = "rating"
	TypeMatrix         QuestionType = "matrix"
	TypeFile           QuestionType = "file"
)

// Question is the logic relevant projection of a survey question.
type Question struct {
	ID         string       `json:"id" yaml:"id"`
	Order      int          `json:"order" yaml:"order"`
	Text       string       `json:"text,omitempty" yaml:"text,omitempty"`
	Type       QuestionType `json:"type,omitempty" yaml:"type,omitempty"`
	Required   bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Options    []string     `json:"options,omitempty" yaml:"options,omitempty"`
	Rows       []string     `json:"rows,omitempty" yaml:"rows,omitempty"`
	LogicRules []LogicRule  `json:"logicRules,omitempty" yaml:"logic,omitempty"`
}

// Survey groups the questions evaluated together.
type Survey struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title,omitempty" yaml:"title,omitempty"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Question looks up a question by id.
func (s *Survey) Question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// SortQuestions returns the questions in display order. Equal orders keep input order.
func SortQuestions(questions []Question) []Question {
	out := append([]Question{}, questions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// QuestionIDs extracts ids preserving order.
func QuestionIDs(questions []Question) []string {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}
