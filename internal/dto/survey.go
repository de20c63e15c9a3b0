package dto

// SurveyDocument is the on-disk form of a survey (YAML or JSON).
// It uses "mapstructure" tags so both the camelCase API keys and the snake_case
// authoring keys decode into the same fields.
type SurveyDocument struct {
	ID        string        `json:"id" mapstructure:"id"`
	Title     string        `json:"title" mapstructure:"title"`
	Questions []QuestionDoc `json:"questions" mapstructure:"questions"`
}

// QuestionDoc is a question record as stored. Rules may appear under any of the
// three keys; they are concatenated in the order logic, logicRules, rules.
type QuestionDoc struct {
	ID       string   `json:"id" mapstructure:"id"`
	Order    *int     `json:"order" mapstructure:"order"`
	Text     string   `json:"text" mapstructure:"text"`
	Type     string   `json:"type" mapstructure:"type"`
	Required bool     `json:"required" mapstructure:"required"`
	Options  []string `json:"options" mapstructure:"options"`
	Rows     []string `json:"rows" mapstructure:"rows"`

	Logic      []RuleDoc `json:"logic" mapstructure:"logic"`
	LogicRules []RuleDoc `json:"logicRules" mapstructure:"logicRules"`
	Rules      []RuleDoc `json:"rules" mapstructure:"rules"`
}

// RuleDoc accepts both stored rule shapes.
//
// Targeted shape: the rule sits under the question it affects and names its source.
// Sourced shape: the rule sits under the question whose answer it tests and names
// its target. Aliases for each key are reconciled by the compiler.
type RuleDoc struct {
	ID string `json:"id" mapstructure:"id"`

	Source     string `json:"source" mapstructure:"source"`
	SourceID   string `json:"sourceQuestionId" mapstructure:"sourceQuestionId"`
	SourceFull string `json:"source_question_id" mapstructure:"source_question_id"`

	Operator any `json:"operator" mapstructure:"operator"`

	Value          any `json:"value" mapstructure:"value"`
	ConditionValue any `json:"conditionValue" mapstructure:"conditionValue"`
	ValueFull      any `json:"condition_value" mapstructure:"condition_value"`

	Action any `json:"action" mapstructure:"action"`

	Target     string `json:"target" mapstructure:"target"`
	TargetID   string `json:"targetQuestionId" mapstructure:"targetQuestionId"`
	TargetFull string `json:"target_question_id" mapstructure:"target_question_id"`
	To         string `json:"to" mapstructure:"to"`
	JumpTo     string `json:"jump_to" mapstructure:"jump_to"`

	Order    *int `json:"order" mapstructure:"order"`
	Priority *int `json:"priority" mapstructure:"priority"`
}
