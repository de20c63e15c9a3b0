package domain

// VisibilityResult is the resolver's verdict for a single question.
// It is derived from the current answers and never persisted.
type VisibilityResult struct {
	Visible   bool   `json:"visible"`
	SkipTo    string `json:"skipTo,omitempty"`
	JumpTo    string `json:"jumpTo,omitempty"`
	EndSurvey bool   `json:"endSurvey"`
}

// StepReason explains how a navigation step was chosen.
type StepReason string

const (
	StepSequential StepReason = "sequential"
	StepSkip       StepReason = "skip"
	StepJump       StepReason = "jump"
	StepEndSurvey  StepReason = "end_survey"
	// StepUnresolved means a directive fired but its destination is not visible.
	StepUnresolved StepReason = "unresolved_target"
	StepEndOfList  StepReason = "end_of_list"
)

// Step is the navigation decision taken from the current question.
// When End is true there is no next question and QuestionID is empty.
type Step struct {
	QuestionID string     `json:"questionId,omitempty"`
	Index      int        `json:"index"`
	End        bool       `json:"end"`
	Reason     StepReason `json:"reason"`
	RuleID     string     `json:"ruleId,omitempty"`
}

// AnswerEntry is one element of an evaluation request.
type AnswerEntry struct {
	QuestionID string `json:"questionId"`
	Value      Answer `json:"value"`
}

// EvaluateRequest asks the server for an authoritative evaluation.
type EvaluateRequest struct {
	CurrentQuestionID string        `json:"currentQuestionId,omitempty"`
	Answers           []AnswerEntry `json:"answers"`
}

// AnswerMap folds the entries into Answers. Later entries win.
func (r EvaluateRequest) AnswerMap() Answers {
	out := make(Answers, len(r.Answers))
	for _, e := range r.Answers {
		out[e.QuestionID] = e.Value
	}
	return out
}

// EvaluateResponse is the authoritative evaluation of an answer set.
type EvaluateResponse struct {
	VisibleQuestionIDs []string `json:"visibleQuestionIds"`
	HiddenQuestionIDs  []string `json:"hiddenQuestionIds"`
	NextQuestionID     *string  `json:"nextQuestionId,omitempty"`
	ShouldEndSurvey    bool     `json:"shouldEndSurvey"`
}
