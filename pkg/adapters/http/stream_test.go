package http

import (
	"testing"

	"github.com/aretw0/surveylogic/internal/logging"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamManager_PublishAndUnsubscribe(t *testing.T) {
	sm := NewStreamManager(logging.NewNop())
	ch, cancel := sm.Subscribe("s1")
	other, cancelOther := sm.Subscribe("s2")
	defer cancelOther()

	sm.Publish(&domain.VisibilityDiff{SessionID: "s1", Shown: []string{"q2"}})

	msg := <-ch
	assert.JSONEq(t, `{"session_id":"s1","shown":["q2"]}`, msg)
	assert.Empty(t, other)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, sm.Subscribers("s1"))
	assert.Equal(t, 1, sm.Subscribers("s2"))
}

func TestStreamManager_SlowClientDropsMessages(t *testing.T) {
	sm := NewStreamManager(logging.NewNop())
	ch, cancel := sm.Subscribe("s1")
	defer cancel()

	for i := 0; i < 25; i++ {
		sm.Broadcast("s1", "x")
	}
	require.Len(t, ch, cap(ch))
}

func TestWatched(t *testing.T) {
	current := "q1"
	end := true
	tests := []struct {
		name   string
		diff   domain.VisibilityDiff
		fields []string
		want   bool
	}{
		{"visibility match", domain.VisibilityDiff{Hidden: []string{"q2"}}, []string{"visibility"}, true},
		{"current only filtered", domain.VisibilityDiff{CurrentQuestionID: &current}, []string{"visibility"}, false},
		{"current match", domain.VisibilityDiff{CurrentQuestionID: &current}, []string{"end", " current"}, true},
		{"end match", domain.VisibilityDiff{EndSurvey: &end}, []string{"end"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStreamManager(logging.NewNop())
			ch, cancel := sm.Subscribe("s")
			defer cancel()
			tt.diff.SessionID = "s"
			sm.Publish(&tt.diff)
			assert.Equal(t, tt.want, watched(<-ch, tt.fields))
		})
	}
}
