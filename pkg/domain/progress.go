package domain

import "time"

// ProgressStatus tells whether a response session is still being filled in.
type ProgressStatus string

const (
	StatusInProgress ProgressStatus = "in_progress" // Respondent is answering
	StatusCompleted  ProgressStatus = "completed"   // Survey was submitted or ended early
)

// Progress is the persisted snapshot of a response session.
type Progress struct {
	// SessionID identifies the response session.
	SessionID string `json:"sessionId"`

	SurveyID string `json:"surveyId"`

	// ShareToken is the distribution link the respondent came from, if any.
	ShareToken string `json:"shareToken,omitempty"`

	// ResponseID is assigned once a partial response exists on the server.
	ResponseID string `json:"responseId,omitempty"`

	Answers Answers `json:"answers"`

	// CurrentIndex is the cursor into the visible question list.
	CurrentIndex int `json:"currentQuestionIndex"`

	Status ProgressStatus `json:"status"`

	SavedAt time.Time `json:"savedAt"`
}

// NewProgress creates an empty in-progress snapshot.
func NewProgress(sessionID, surveyID string) *Progress {
	return &Progress{
		SessionID: sessionID,
		SurveyID:  surveyID,
		Answers:   Answers{},
		Status:    StatusInProgress,
	}
}

// Clone returns a deep copy.
func (p *Progress) Clone() *Progress {
	if p == nil {
		return nil
	}
	out := *p
	out.Answers = p.Answers.Clone()
	return &out
}

// Expired reports whether the snapshot is older than ttl at now.
// A zero ttl never expires.
func (p *Progress) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 || p.SavedAt.IsZero() {
		return false
	}
	return now.Sub(p.SavedAt) > ttl
}
