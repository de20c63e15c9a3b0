package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/surveylogic/internal/logging"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to saved progress per session.
// Local locks are reference counted so idle sessions leave nothing behind.
type Manager struct {
	store ports.ProgressStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease requested from the distributed locker.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given progress store.
func NewManager(store ports.ProgressStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Load retrieves saved progress.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	var progress *domain.Progress
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		progress, err = m.store.Load(ctx, sessionID)
		return err
	})
	return progress, err
}

// LoadOrStart loads saved progress or creates and persists an empty one.
// Progress saved under the same id for a different survey is left untouched and
// ErrSessionConflict is returned.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID, surveyID string) (*domain.Progress, error) {
	var progress *domain.Progress
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		progress, err = m.store.Load(ctx, sessionID)
		if err == nil {
			if other := progress.SurveyID; other != surveyID {
				progress = nil
				return fmt.Errorf("%w: %q is bound to %q", domain.ErrSessionConflict, sessionID, other)
			}
			return nil
		}
		if !errors.Is(err, domain.ErrProgressNotFound) {
			return fmt.Errorf("failed to check progress: %w", err)
		}

		progress = domain.NewProgress(sessionID, surveyID)
		progress.SavedAt = time.Now().UTC()
		if err := m.store.Save(ctx, sessionID, progress); err != nil {
			return fmt.Errorf("failed to initialize progress: %w", err)
		}
		return nil
	})
	return progress, err
}

// Update loads progress, hands it to fn and saves the result, all under the session lock.
// fn returns the progress to store.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(context.Context, *domain.Progress) (*domain.Progress, error)) (*domain.Progress, error) {
	var out *domain.Progress
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		out, err = fn(ctx, current)
		if err != nil {
			return err
		}
		out.SavedAt = time.Now().UTC()
		return m.store.Save(ctx, sessionID, out)
	})
	return out, err
}

// Save persists progress.
func (m *Manager) Save(ctx context.Context, sessionID string, progress *domain.Progress) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, progress)
	})
}

// Delete removes saved progress.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying progress store.
func (m *Manager) Store() ports.ProgressStore {
	return m.store
}

// WithLock runs fn while holding the local lock and, if configured, the distributed lock.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock, it will expire",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
