package compiler

import (
	"fmt"
	"strconv"

	"github.com/aretw0/surveylogic/internal/dto"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parser is responsible for converting raw survey documents into canonical questions.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a YAML or JSON survey document.
// JSON is valid YAML, so a single decoder serves both formats.
func (p *Parser) Parse(data []byte) (*domain.Survey, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse survey: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse survey: empty document")
	}
	return p.FromMap(raw)
}

// FromMap decodes an already unmarshaled survey document.
func (p *Parser) FromMap(raw map[string]any) (*domain.Survey, error) {
	var doc dto.SurveyDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode survey: %w", err)
	}

	survey := &domain.Survey{
		ID:        doc.ID,
		Title:     doc.Title,
		Questions: make([]domain.Question, 0, len(doc.Questions)),
	}
	for i, qd := range doc.Questions {
		if qd.ID == "" {
			return nil, fmt.Errorf("question %d missing id", i)
		}
		q, err := buildQuestion(i, qd)
		if err != nil {
			return nil, err
		}
		survey.Questions = append(survey.Questions, q)
	}
	survey.Questions = Canonicalize(survey.Questions)
	return survey, nil
}

func buildQuestion(index int, qd dto.QuestionDoc) (domain.Question, error) {
	q := domain.Question{
		ID:       qd.ID,
		Order:    index,
		Text:     qd.Text,
		Type:     domain.QuestionType(qd.Type),
		Required: qd.Required,
		Options:  qd.Options,
		Rows:     qd.Rows,
	}
	if qd.Order != nil {
		q.Order = *qd.Order
	}

	docs := make([]dto.RuleDoc, 0, len(qd.Logic)+len(qd.LogicRules)+len(qd.Rules))
	docs = append(docs, qd.Logic...)
	docs = append(docs, qd.LogicRules...)
	docs = append(docs, qd.Rules...)

	for j, rd := range docs {
		rule, err := buildRule(j, rd)
		if err != nil {
			return domain.Question{}, fmt.Errorf("question %s rule %d: %w", qd.ID, j, err)
		}
		q.LogicRules = append(q.LogicRules, rule)
	}
	return q, nil
}

func buildRule(index int, rd dto.RuleDoc) (domain.LogicRule, error) {
	r := domain.LogicRule{
		ID:               rd.ID,
		SourceQuestionID: firstNonEmpty(rd.SourceID, rd.SourceFull, rd.Source),
		TargetQuestionID: firstNonEmpty(rd.TargetID, rd.TargetFull, rd.Target, rd.JumpTo, rd.To),
		Order:            index,
	}

	switch {
	case rd.Order != nil:
		r.Order = *rd.Order
	case rd.Priority != nil:
		r.Order = *rd.Priority
	}

	op, err := scalar(rd.Operator)
	if err != nil {
		return r, fmt.Errorf("operator: %w", err)
	}
	r.Operator = domain.ParseOperator(op)

	act, err := scalar(rd.Action)
	if err != nil {
		return r, fmt.Errorf("action: %w", err)
	}
	r.Action = domain.ParseAction(act)

	for _, v := range []any{rd.ConditionValue, rd.ValueFull, rd.Value} {
		if v == nil {
			continue
		}
		s, err := scalar(v)
		if err != nil {
			return r, fmt.Errorf("condition value: %w", err)
		}
		r.ConditionValue = &s
		break
	}
	return r, nil
}

func scalar(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("expected a scalar, got %T", v)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
