package session

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/surveylogic/pkg/domain"
)

// DefaultAutosaveDelay is the quiet period before a scheduled save is written.
const DefaultAutosaveDelay = time.Second

// Save results reported through the autosaver's report callback.
const (
	SaveSaved      = "saved"
	SaveSuperseded = "superseded"
	SaveCancelled  = "cancelled"
	SaveFailed     = "failed"
)

// SaveFunc persists one progress snapshot.
type SaveFunc func(ctx context.Context, p *domain.Progress) error

// AutoSaver coalesces rapid progress changes into a single write.
//
// Every Schedule bumps a generation counter. A write only happens for the newest
// generation and writes never overlap, so the last scheduled snapshot is always
// the last one written.
type AutoSaver struct {
	save   SaveFunc
	delay  time.Duration
	report func(result string, err error)

	mu      sync.Mutex
	gen     uint64
	pending *domain.Progress
	timer   *time.Timer
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

// NewAutoSaver creates a saver. A non-positive delay uses DefaultAutosaveDelay.
// report may be nil.
func NewAutoSaver(save SaveFunc, delay time.Duration, report func(result string, err error)) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	if report == nil {
		report = func(string, error) {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AutoSaver{
		save:   save,
		delay:  delay,
		report: report,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule replaces any pending snapshot with p and restarts the quiet period.
func (a *AutoSaver) Schedule(p *domain.Progress) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.gen++
	gen := a.gen
	a.pending = p.Clone()
	superseded := a.stopTimerLocked()

	a.wg.Add(1)
	a.timer = time.AfterFunc(a.delay, func() {
		defer a.wg.Done()
		a.fire(gen)
	})
	a.mu.Unlock()

	if superseded {
		a.report(SaveSuperseded, nil)
	}
}

// Pending reports whether a snapshot is waiting to be written.
func (a *AutoSaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

func (a *AutoSaver) fire(gen uint64) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		a.report(SaveSuperseded, nil)
		return
	}
	p := a.pending
	a.pending = nil
	ctx := a.ctx
	a.mu.Unlock()

	if p != nil {
		_ = a.write(ctx, p)
	}
}

// Flush writes the pending snapshot now, if there is one.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	a.stopTimerLocked()
	p := a.pending
	a.pending = nil
	a.mu.Unlock()

	if p == nil {
		return nil
	}
	return a.write(ctx, p)
}

// Cancel drops the pending snapshot and aborts a write in flight.
// It returns once no write is running, so nothing lands after it.
func (a *AutoSaver) Cancel() {
	a.mu.Lock()
	a.gen++
	hadPending := a.pending != nil
	a.pending = nil
	a.stopTimerLocked()
	a.cancel()
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.mu.Unlock()

	a.writeMu.Lock()
	a.writeMu.Unlock()

	if hadPending {
		a.report(SaveCancelled, nil)
	}
}

// Close cancels outstanding work and waits for timer goroutines to return.
// Schedule is a no-op afterwards.
func (a *AutoSaver) Close() {
	a.Cancel()
	a.mu.Lock()
	a.closed = true
	a.cancel()
	a.mu.Unlock()
	a.wg.Wait()
}

func (a *AutoSaver) write(ctx context.Context, p *domain.Progress) error {
	err := a.save(ctx, p)
	switch {
	case err == nil:
		a.report(SaveSaved, nil)
	case ctx.Err() != nil:
		a.report(SaveCancelled, err)
	default:
		a.report(SaveFailed, err)
	}
	return err
}

// stopTimerLocked stops the armed timer. It reports true when a scheduled fire was prevented.
func (a *AutoSaver) stopTimerLocked() bool {
	if a.timer == nil {
		return false
	}
	stopped := a.timer.Stop()
	a.timer = nil
	if stopped {
		a.wg.Done()
	}
	return stopped
}
