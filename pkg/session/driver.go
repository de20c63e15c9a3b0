package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/surveylogic/internal/logging"
	"github.com/aretw0/surveylogic/internal/runtime"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/ports"
)

// View is what a host renders for a session.
type View struct {
	SessionID          string                `json:"sessionId"`
	SurveyID           string                `json:"surveyId"`
	Status             domain.ProgressStatus `json:"status"`
	CurrentIndex       int                   `json:"currentQuestionIndex"`
	CurrentQuestion    *domain.Question      `json:"currentQuestion,omitempty"`
	VisibleQuestionIDs []string              `json:"visibleQuestionIds"`
	CanGoNext          bool                  `json:"canGoNext"`
	CanGoPrevious      bool                  `json:"canGoPrevious"`
	ShouldEndSurvey    bool                  `json:"shouldEndSurvey"`
	Answers            domain.Answers        `json:"answers"`
}

// Driver owns the answers and cursor of one response session.
// It re-runs traversal after every mutation. Methods are safe for concurrent use
// and never interleave.
type Driver struct {
	mu sync.Mutex

	program  *runtime.Program
	progress *domain.Progress

	visible []domain.Question
	endNow  bool
	last    *domain.Snapshot

	validator ports.AnswerValidator
	store     ports.ProgressStore
	saver     *AutoSaver
	delay     time.Duration
	hooks     domain.LifecycleHooks
	onChange  func(*domain.VisibilityDiff)
	logger    *slog.Logger
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithValidator sets the check run on the current answer before Next.
func WithValidator(v ports.AnswerValidator) DriverOption {
	return func(d *Driver) {
		d.validator = v
	}
}

// WithAutoSave persists progress to store after every change, debounced by delay.
// Completion deletes the stored progress.
func WithAutoSave(store ports.ProgressStore, delay time.Duration) DriverOption {
	return func(d *Driver) {
		d.store = store
		d.delay = delay
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) DriverOption {
	return func(d *Driver) {
		d.hooks = d.hooks.Merge(hooks)
	}
}

// WithOnChange registers a callback receiving visibility diffs. It runs while the
// driver lock is held and must not call back into the driver.
func WithOnChange(fn func(*domain.VisibilityDiff)) DriverOption {
	return func(d *Driver) {
		d.onChange = fn
	}
}

// WithResume starts from saved progress instead of an empty answer set.
func WithResume(p *domain.Progress) DriverOption {
	return func(d *Driver) {
		if p != nil {
			d.progress = p.Clone()
		}
	}
}

// WithDriverLogger sets the driver logger.
func WithDriverLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = logger
	}
}

// NewDriver creates a driver for one session of the survey compiled into program.
func NewDriver(program *runtime.Program, surveyID, sessionID string, opts ...DriverOption) *Driver {
	d := &Driver{
		program:  program,
		progress: domain.NewProgress(sessionID, surveyID),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.progress.SessionID = sessionID
	d.progress.SurveyID = surveyID
	if d.progress.Answers == nil {
		d.progress.Answers = domain.Answers{}
	}

	if d.store != nil {
		store := d.store
		d.saver = NewAutoSaver(func(ctx context.Context, p *domain.Progress) error {
			return store.Save(ctx, p.SessionID, p)
		}, d.delay, d.reportSave)
	}

	d.reevaluate(context.Background())
	d.last = d.snapshot()
	return d
}

// View returns the current session view.
func (d *Driver) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view()
}

// Progress returns a copy of the session progress.
func (d *Driver) Progress() *domain.Progress {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.progress.Clone()
}

// SetAnswer records an answer and re-evaluates the survey.
func (d *Driver) SetAnswer(ctx context.Context, questionID string, answer domain.Answer) (View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.mutable(questionID); err != nil {
		return d.view(), err
	}
	d.progress.Answers[questionID] = answer.Clone()
	d.changed(ctx)
	return d.view(), nil
}

// ClearAnswer removes an answer and re-evaluates the survey.
func (d *Driver) ClearAnswer(ctx context.Context, questionID string) (View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.mutable(questionID); err != nil {
		return d.view(), err
	}
	delete(d.progress.Answers, questionID)
	d.changed(ctx)
	return d.view(), nil
}

// Next validates the current answer and moves forward.
//
// When the answer set ends the survey the session completes instead of moving.
// A Skip or JumpTo to a question that is not visible moves to the last visible
// question. On the last question the returned step has End set and nothing moves.
func (d *Driver) Next(ctx context.Context) (domain.Step, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.progress.Status == domain.StatusCompleted {
		return domain.Step{}, domain.ErrSessionCompleted
	}
	if len(d.visible) == 0 {
		return domain.Step{}, domain.ErrNoQuestion
	}

	current := d.visible[d.progress.CurrentIndex]
	if d.validator != nil {
		if err := d.validator.Validate(current, d.progress.Answers.Get(current.ID)); err != nil {
			return domain.Step{}, err
		}
	}

	if d.program.ShouldEndSurvey(d.progress.Answers) {
		d.complete(ctx, current.ID)
		return domain.Step{End: true, Index: -1, Reason: domain.StepEndSurvey}, nil
	}

	step := d.program.Next(d.progress.Answers, current.ID)
	switch {
	case !step.End:
		d.progress.CurrentIndex = step.Index
	case step.Reason == domain.StepEndSurvey:
		d.complete(ctx, current.ID)
		return step, nil
	case step.Reason == domain.StepUnresolved:
		d.progress.CurrentIndex = len(d.visible) - 1
	default:
		return step, nil
	}

	d.navigated(ctx, current.ID, step.Reason)
	return step, nil
}

// Previous moves one question back. It reports false when already at the start.
func (d *Driver) Previous(ctx context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.progress.Status == domain.StatusCompleted {
		return false, domain.ErrSessionCompleted
	}
	if d.progress.CurrentIndex == 0 {
		return false, nil
	}
	from := d.currentID()
	d.progress.CurrentIndex--
	d.navigated(ctx, from, "previous")
	return true, nil
}

// GoTo moves the cursor to a position in the visible list.
func (d *Driver) GoTo(ctx context.Context, index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.progress.Status == domain.StatusCompleted {
		return domain.ErrSessionCompleted
	}
	if index < 0 || index >= len(d.visible) {
		return fmt.Errorf("%w: %d of %d", domain.ErrCursorOutOfRange, index, len(d.visible))
	}
	from := d.currentID()
	d.progress.CurrentIndex = index
	d.navigated(ctx, from, "goto")
	return nil
}

// Submit validates every visible answer and completes the session.
func (d *Driver) Submit(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.progress.Status == domain.StatusCompleted {
		return domain.ErrSessionCompleted
	}
	if d.validator != nil {
		for _, q := range d.visible {
			if err := d.validator.Validate(q, d.progress.Answers.Get(q.ID)); err != nil {
				return err
			}
		}
	}
	d.complete(ctx, d.currentID())
	return nil
}

// Flush writes pending auto-save work immediately.
func (d *Driver) Flush(ctx context.Context) error {
	if d.saver == nil {
		return nil
	}
	return d.saver.Flush(ctx)
}

// Close stops the auto-saver. Pending work is dropped; call Flush first to keep it.
func (d *Driver) Close() {
	if d.saver != nil {
		d.saver.Close()
	}
}

func (d *Driver) mutable(questionID string) error {
	if d.progress.Status == domain.StatusCompleted {
		return domain.ErrSessionCompleted
	}
	if _, ok := d.program.Question(questionID); !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownQuestion, questionID)
	}
	return nil
}

func (d *Driver) changed(ctx context.Context) {
	d.reevaluate(ctx)
	d.emitDiff()
	if d.saver != nil {
		d.progress.SavedAt = time.Now().UTC()
		d.saver.Schedule(d.progress)
	}
}

// reevaluate re-runs traversal and clamps the cursor into the new visible list.
func (d *Driver) reevaluate(ctx context.Context) {
	start := time.Now()
	d.visible = d.program.VisibleQuestions(d.progress.Answers)
	d.endNow = d.program.ShouldEndSurvey(d.progress.Answers)

	switch {
	case len(d.visible) == 0:
		d.progress.CurrentIndex = 0
	case d.progress.CurrentIndex >= len(d.visible):
		d.progress.CurrentIndex = len(d.visible) - 1
	case d.progress.CurrentIndex < 0:
		d.progress.CurrentIndex = 0
	}

	if d.hooks.OnEvaluate != nil {
		d.hooks.OnEvaluate(ctx, &domain.EvaluateEvent{
			EventBase: d.event(domain.EventEvaluate),
			Visible:   len(d.visible),
			Hidden:    len(d.program.Questions()) - len(d.visible),
			EndSurvey: d.endNow,
			Duration:  time.Since(start),
		})
	}
}

func (d *Driver) navigated(ctx context.Context, from string, reason domain.StepReason) {
	to := d.currentID()
	d.logger.Debug("cursor moved", "session_id", d.progress.SessionID, "from", from, "to", to, "reason", reason)
	if d.hooks.OnNavigate != nil {
		d.hooks.OnNavigate(ctx, &domain.NavigateEvent{
			EventBase: d.event(domain.EventNavigate),
			From:      from,
			To:        to,
			Reason:    reason,
		})
	}
	d.emitDiff()
	if d.saver != nil {
		d.progress.SavedAt = time.Now().UTC()
		d.saver.Schedule(d.progress)
	}
}

func (d *Driver) complete(ctx context.Context, from string) {
	d.progress.Status = domain.StatusCompleted
	d.logger.Info("session completed", "session_id", d.progress.SessionID, "at", from)

	if d.saver != nil {
		d.saver.Cancel()
	}
	if d.store != nil {
		if err := d.store.Delete(ctx, d.progress.SessionID); err != nil {
			d.logger.Warn("failed to clear saved progress", "session_id", d.progress.SessionID, "err", err)
		}
	}
	if d.hooks.OnComplete != nil {
		ev := d.event(domain.EventComplete)
		d.hooks.OnComplete(ctx, &ev)
	}
}

func (d *Driver) reportSave(result string, err error) {
	if err != nil {
		d.logger.Warn("auto-save failed", "result", result, "err", err)
	}
	if d.hooks.OnSave == nil {
		return
	}
	// Saves finish outside the driver lock, so the event carries only immutable ids.
	d.hooks.OnSave(context.Background(), &domain.SaveEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventSave,
			SessionID: d.progress.SessionID,
			SurveyID:  d.progress.SurveyID,
		},
		Result: result,
		Err:    err,
	})
}

func (d *Driver) emitDiff() {
	next := d.snapshot()
	if diff := domain.DiffVisibility(d.last, next); diff != nil && d.onChange != nil {
		d.onChange(diff)
	}
	d.last = next
}

func (d *Driver) snapshot() *domain.Snapshot {
	return &domain.Snapshot{
		SessionID:         d.progress.SessionID,
		VisibleIDs:        domain.QuestionIDs(d.visible),
		CurrentQuestionID: d.currentID(),
		EndSurvey:         d.endNow,
	}
}

func (d *Driver) currentID() string {
	if len(d.visible) == 0 {
		return ""
	}
	return d.visible[d.progress.CurrentIndex].ID
}

func (d *Driver) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		SessionID: d.progress.SessionID,
		SurveyID:  d.progress.SurveyID,
	}
}

func (d *Driver) view() View {
	v := View{
		SessionID:          d.progress.SessionID,
		SurveyID:           d.progress.SurveyID,
		Status:             d.progress.Status,
		CurrentIndex:       d.progress.CurrentIndex,
		VisibleQuestionIDs: domain.QuestionIDs(d.visible),
		ShouldEndSurvey:    d.endNow,
		Answers:            d.progress.Answers.Clone(),
	}
	if len(d.visible) > 0 {
		q := d.visible[d.progress.CurrentIndex]
		v.CurrentQuestion = &q
		v.CanGoPrevious = d.progress.CurrentIndex > 0
		v.CanGoNext = d.progress.CurrentIndex < len(d.visible)-1
	}
	if v.Status == domain.StatusCompleted {
		v.CanGoNext = false
		v.CanGoPrevious = false
	}
	return v
}
