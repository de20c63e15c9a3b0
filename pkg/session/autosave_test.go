package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/surveylogic/pkg/adapters/memory"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/ports"
	"github.com/aretw0/surveylogic/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts Save calls on top of a real store.
type countingStore struct {
	ports.ProgressStore
	mu sync.Mutex
	n  int
}

func (s *countingStore) Save(ctx context.Context, id string, p *domain.Progress) error {
	s.mu.Lock()
	s.n++
	s.mu.Unlock()
	return s.ProgressStore.Save(ctx, id, p)
}

func (s *countingStore) saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

func progressWith(value string) *domain.Progress {
	p := domain.NewProgress("s1", "survey")
	p.Answers["q1"] = domain.Text(value)
	return p
}

func TestAutoSaver_CoalescesToLastSnapshot(t *testing.T) {
	var mu sync.Mutex
	var written []string
	saver := session.NewAutoSaver(func(ctx context.Context, p *domain.Progress) error {
		mu.Lock()
		written = append(written, p.Answers["q1"].Text)
		mu.Unlock()
		return nil
	}, 20*time.Millisecond, nil)
	defer saver.Close()

	for _, v := range []string{"a", "b", "c"} {
		saver.Schedule(progressWith(v))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(written) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"c"}, written)
}

func TestAutoSaver_SnapshotIsCopied(t *testing.T) {
	store := memory.NewStore()
	saver := session.NewAutoSaver(func(ctx context.Context, p *domain.Progress) error {
		return store.Save(ctx, p.SessionID, p)
	}, time.Hour, nil)
	defer saver.Close()

	p := progressWith("before")
	saver.Schedule(p)
	p.Answers["q1"] = domain.Text("after")

	require.NoError(t, saver.Flush(context.Background()))
	loaded, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "before", loaded.Answers["q1"].Text)
}

func TestAutoSaver_CancelDropsPending(t *testing.T) {
	store := &countingStore{ProgressStore: memory.NewStore()}
	var results []string
	var mu sync.Mutex
	saver := session.NewAutoSaver(func(ctx context.Context, p *domain.Progress) error {
		return store.Save(ctx, p.SessionID, p)
	}, 20*time.Millisecond, func(result string, err error) {
		mu.Lock()
		results = append(results, result)
		mu.Unlock()
	})
	defer saver.Close()

	saver.Schedule(progressWith("x"))
	assert.True(t, saver.Pending())
	saver.Cancel()
	assert.False(t, saver.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, store.saves())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{session.SaveCancelled}, results)
}

func TestAutoSaver_CancelAbortsWriteInFlight(t *testing.T) {
	started := make(chan struct{})
	var result string
	var mu sync.Mutex
	saver := session.NewAutoSaver(func(ctx context.Context, p *domain.Progress) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}, time.Millisecond, func(r string, err error) {
		mu.Lock()
		result = r
		mu.Unlock()
	})
	defer saver.Close()

	saver.Schedule(progressWith("slow"))
	<-started
	saver.Cancel()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, session.SaveCancelled, result)
}

func TestAutoSaver_FlushReportsFailure(t *testing.T) {
	boom := errors.New("disk full")
	var result string
	saver := session.NewAutoSaver(func(ctx context.Context, p *domain.Progress) error {
		return boom
	}, time.Hour, func(r string, err error) { result = r })
	defer saver.Close()

	saver.Schedule(progressWith("x"))
	err := saver.Flush(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, session.SaveFailed, result)

	assert.NoError(t, saver.Flush(context.Background()), "nothing left to flush")
}

func TestAutoSaver_ClosedIgnoresSchedule(t *testing.T) {
	store := &countingStore{ProgressStore: memory.NewStore()}
	saver := session.NewAutoSaver(func(ctx context.Context, p *domain.Progress) error {
		return store.Save(ctx, p.SessionID, p)
	}, time.Millisecond, nil)
	saver.Close()

	saver.Schedule(progressWith("x"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, store.saves())
	assert.False(t, saver.Pending())
}
