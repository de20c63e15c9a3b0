package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventEvaluate EventType = "evaluate"
	EventNavigate EventType = "navigate"
	EventComplete EventType = "complete"
	EventSave     EventType = "save"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	SurveyID  string    `json:"survey_id,omitempty"`
}

// EvaluateEvent is emitted after a full traversal of the answer set.
type EvaluateEvent struct {
	EventBase
	Visible   int           `json:"visible"`
	Hidden    int           `json:"hidden"`
	EndSurvey bool          `json:"end_survey"`
	Duration  time.Duration `json:"duration"`
}

// NavigateEvent is emitted when a driver moves its cursor.
type NavigateEvent struct {
	EventBase
	From   string     `json:"from"`
	To     string     `json:"to,omitempty"`
	Reason StepReason `json:"reason"`
}

// SaveEvent reports the outcome of an auto-save attempt.
type SaveEvent struct {
	EventBase
	// Result is "saved", "superseded", "cancelled" or "failed".
	Result string `json:"result"`
	Err    error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnEvaluate func(context.Context, *EvaluateEvent)
	OnNavigate func(context.Context, *NavigateEvent)
	OnComplete func(context.Context, *EventBase)
	OnSave     func(context.Context, *SaveEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnEvaluate: chain(h.OnEvaluate, other.OnEvaluate),
		OnNavigate: chain(h.OnNavigate, other.OnNavigate),
		OnComplete: chain(h.OnComplete, other.OnComplete),
		OnSave:     chain(h.OnSave, other.OnSave),
	}
}

func chain[T any](a, b func(context.Context, T)) func(context.Context, T) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, ev T) {
		a(ctx, ev)
		b(ctx, ev)
	}
}
