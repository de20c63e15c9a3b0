package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/surveylogic/internal/runtime"
	"github.com/aretw0/surveylogic/pkg/adapters/memory"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/schema"
	"github.com/aretw0/surveylogic/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func when(id string, value string, action domain.Action, target string, order int) domain.LogicRule {
	return domain.LogicRule{
		ID:               id,
		SourceQuestionID: "q1",
		Operator:         domain.OpEquals,
		ConditionValue:   domain.StrPtr(value),
		Action:           action,
		TargetQuestionID: target,
		Order:            order,
	}
}

// branching builds: q1 (choice) -> q2 (only when q1 = yes) -> q3 -> q4.
func branching() *runtime.Program {
	return runtime.Compile([]domain.Question{
		{
			ID: "q1", Order: 1, Type: domain.TypeSingleChoice, Required: true,
			Options: []string{"yes", "no", "skip", "end", "hidden"},
			LogicRules: []domain.LogicRule{
				when("show-q2", "yes", domain.ActionShow, "q2", 0),
				when("skip-q4", "skip", domain.ActionSkip, "q4", 1),
				when("end", "end", domain.ActionEndSurvey, "", 2),
				when("jump-hidden", "hidden", domain.ActionJumpTo, "q2", 3),
			},
		},
		{ID: "q2", Order: 2, Type: domain.TypeText},
		{ID: "q3", Order: 3, Type: domain.TypeText},
		{ID: "q4", Order: 4, Type: domain.TypeNumber},
	})
}

func newDriver(t *testing.T, opts ...session.DriverOption) *session.Driver {
	t.Helper()
	d := session.NewDriver(branching(), "survey", "s1", opts...)
	t.Cleanup(d.Close)
	return d
}

func TestDriver_InitialView(t *testing.T) {
	d := newDriver(t)
	v := d.View()

	assert.Equal(t, []string{"q1", "q3", "q4"}, v.VisibleQuestionIDs)
	require.NotNil(t, v.CurrentQuestion)
	assert.Equal(t, "q1", v.CurrentQuestion.ID)
	assert.True(t, v.CanGoNext)
	assert.False(t, v.CanGoPrevious)
}

func TestDriver_SetAnswerRevealsQuestion(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	v, err := d.SetAnswer(ctx, "q1", domain.Text("yes"))
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2", "q3", "q4"}, v.VisibleQuestionIDs)

	v, err = d.ClearAnswer(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q3", "q4"}, v.VisibleQuestionIDs)
}

func TestDriver_UnknownQuestion(t *testing.T) {
	d := newDriver(t)
	_, err := d.SetAnswer(context.Background(), "nope", domain.Text("x"))
	assert.ErrorIs(t, err, domain.ErrUnknownQuestion)
}

func TestDriver_CursorClampsWhenListShrinks(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	_, err := d.SetAnswer(ctx, "q1", domain.Text("yes"))
	require.NoError(t, err)
	require.NoError(t, d.GoTo(ctx, 3))
	assert.Equal(t, "q4", d.View().CurrentQuestion.ID)

	// EndSurvey on q1 truncates the visible list to q1 alone.
	v, err := d.SetAnswer(ctx, "q1", domain.Text("end"))
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, v.VisibleQuestionIDs)
	assert.Equal(t, 0, v.CurrentIndex)
	assert.False(t, v.CanGoNext)
	assert.False(t, v.CanGoPrevious)
	assert.True(t, v.ShouldEndSurvey)
}

func TestDriver_NextSequential(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	_, err := d.SetAnswer(ctx, "q1", domain.Text("no"))
	require.NoError(t, err)

	step, err := d.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StepSequential, step.Reason)
	assert.Equal(t, "q3", d.View().CurrentQuestion.ID)
	assert.True(t, d.View().CanGoPrevious)
}

func TestDriver_NextBlockedByValidation(t *testing.T) {
	d := newDriver(t, session.WithValidator(schema.NewValidator()))

	_, err := d.Next(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrRequired)
	assert.Equal(t, 0, d.View().CurrentIndex)
}

func TestDriver_NextFollowsSkip(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	_, err := d.SetAnswer(ctx, "q1", domain.Text("skip"))
	require.NoError(t, err)

	step, err := d.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StepSkip, step.Reason)
	assert.Equal(t, "skip-q4", step.RuleID)
	assert.Equal(t, "q4", d.View().CurrentQuestion.ID)
}

func TestDriver_UnresolvedJumpMovesToEnd(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	_, err := d.SetAnswer(ctx, "q1", domain.Text("hidden"))
	require.NoError(t, err)

	step, err := d.Next(ctx)
	require.NoError(t, err)
	assert.True(t, step.End)
	assert.Equal(t, domain.StepUnresolved, step.Reason)

	v := d.View()
	assert.Equal(t, "q4", v.CurrentQuestion.ID)
	assert.Equal(t, domain.StatusInProgress, v.Status)
}

func TestDriver_NextAtLastQuestionStays(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()
	require.NoError(t, d.GoTo(ctx, 2))

	step, err := d.Next(ctx)
	require.NoError(t, err)
	assert.True(t, step.End)
	assert.Equal(t, domain.StepEndOfList, step.Reason)
	assert.Equal(t, 2, d.View().CurrentIndex)
}

func TestDriver_EndSurveyCompletes(t *testing.T) {
	store := memory.NewStore()
	var completed int
	d := newDriver(t,
		session.WithAutoSave(store, time.Hour),
		session.WithHooks(domain.LifecycleHooks{
			OnComplete: func(ctx context.Context, ev *domain.EventBase) { completed++ },
		}),
	)
	ctx := context.Background()

	_, err := d.SetAnswer(ctx, "q1", domain.Text("end"))
	require.NoError(t, err)
	require.NoError(t, d.Flush(ctx))
	_, err = store.Load(ctx, "s1")
	require.NoError(t, err, "flushed progress is stored")

	step, err := d.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StepEndSurvey, step.Reason)
	assert.Equal(t, 1, completed)
	assert.Equal(t, domain.StatusCompleted, d.View().Status)

	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrProgressNotFound, "completion clears saved progress")

	_, err = d.SetAnswer(ctx, "q3", domain.Text("late"))
	assert.ErrorIs(t, err, domain.ErrSessionCompleted)
	_, err = d.Next(ctx)
	assert.ErrorIs(t, err, domain.ErrSessionCompleted)
}

func TestDriver_PreviousAndGoTo(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	moved, err := d.Previous(ctx)
	require.NoError(t, err)
	assert.False(t, moved)

	require.NoError(t, d.GoTo(ctx, 2))
	moved, err = d.Previous(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 1, d.View().CurrentIndex)

	assert.ErrorIs(t, d.GoTo(ctx, 7), domain.ErrCursorOutOfRange)
	assert.ErrorIs(t, d.GoTo(ctx, -1), domain.ErrCursorOutOfRange)
}

func TestDriver_OnChangeDiffs(t *testing.T) {
	var diffs []*domain.VisibilityDiff
	d := newDriver(t, session.WithOnChange(func(diff *domain.VisibilityDiff) {
		diffs = append(diffs, diff)
	}))
	ctx := context.Background()

	_, err := d.SetAnswer(ctx, "q1", domain.Text("yes"))
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, []string{"q2"}, diffs[0].Shown)
	assert.Nil(t, diffs[0].CurrentQuestionID)

	// Same visible list, no diff.
	_, err = d.SetAnswer(ctx, "q3", domain.Text("anything"))
	require.NoError(t, err)
	assert.Len(t, diffs, 1)

	_, err = d.Next(ctx)
	require.NoError(t, err)
	require.Len(t, diffs, 2)
	require.NotNil(t, diffs[1].CurrentQuestionID)
	assert.Equal(t, "q2", *diffs[1].CurrentQuestionID)
}

func TestDriver_Resume(t *testing.T) {
	saved := domain.NewProgress("old-id", "survey")
	saved.Answers["q1"] = domain.Text("yes")
	saved.CurrentIndex = 2

	d := newDriver(t, session.WithResume(saved))
	v := d.View()
	assert.Equal(t, "s1", v.SessionID)
	assert.Equal(t, "q3", v.CurrentQuestion.ID)
	assert.Len(t, v.VisibleQuestionIDs, 4)
}

func TestDriver_SubmitValidatesVisibleAnswers(t *testing.T) {
	d := newDriver(t, session.WithValidator(schema.NewValidator()))
	ctx := context.Background()

	assert.Error(t, d.Submit(ctx))

	_, err := d.SetAnswer(ctx, "q1", domain.Text("no"))
	require.NoError(t, err)
	require.NoError(t, d.Submit(ctx))
	assert.Equal(t, domain.StatusCompleted, d.View().Status)
}

func TestDriver_AutoSaveDebounces(t *testing.T) {
	store := &countingStore{ProgressStore: memory.NewStore()}
	var mu sync.Mutex
	results := map[string]int{}
	d := newDriver(t,
		session.WithAutoSave(store, 20*time.Millisecond),
		session.WithHooks(domain.LifecycleHooks{
			OnSave: func(ctx context.Context, ev *domain.SaveEvent) {
				mu.Lock()
				results[ev.Result]++
				mu.Unlock()
			},
		}),
	)
	ctx := context.Background()

	for _, v := range []string{"no", "yes", "skip"} {
		_, err := d.SetAnswer(ctx, "q1", domain.Text(v))
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool { return store.saves() == 1 }, time.Second, 5*time.Millisecond)

	p, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "skip", p.Answers["q1"].Text, "the last scheduled snapshot wins")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, results[session.SaveSaved])
	assert.Equal(t, 2, results[session.SaveSuperseded])
}
