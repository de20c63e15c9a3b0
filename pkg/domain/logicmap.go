package domain

// LogicMap is a graph view of a survey's rules for authoring tools.
type LogicMap struct {
	Nodes []LogicNode `json:"nodes"`
	Edges []LogicEdge `json:"edges"`
}

// LogicNode is a question in the logic map.
type LogicNode struct {
	ID    string       `json:"id"`
	Text  string       `json:"text"`
	Order int          `json:"order"`
	Type  QuestionType `json:"type,omitempty"`
	// HasLogic is true when rules are declared on the question.
	HasLogic bool `json:"hasLogic"`
	// IsConditional is true when Show or Hide rules target the question.
	IsConditional bool `json:"isConditional"`
}

// LogicEdge connects the question whose answer is tested to the question affected.
// For Skip and JumpTo the target is the destination.
type LogicEdge struct {
	ID             string   `json:"id"`
	SourceID       string   `json:"sourceId"`
	TargetID       string   `json:"targetId,omitempty"`
	Operator       Operator `json:"operator"`
	ConditionValue string   `json:"conditionValue,omitempty"`
	Action         Action   `json:"action"`
	Label          string   `json:"label"`
}
