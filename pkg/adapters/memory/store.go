package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/surveylogic/pkg/domain"
)

// Store implements ports.ProgressStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Progress
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
}

// StoreOption configures the in-memory store.
type StoreOption func(*Store)

// WithTTL expires entries whose SavedAt is older than ttl.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		data: make(map[string]*domain.Progress),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists a deep copy of the progress.
func (s *Store) Save(ctx context.Context, sessionID string, progress *domain.Progress) error {
	copied := progress.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load retrieves a copy of the progress so callers cannot mutate the stored value.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	s.mu.RLock()
	progress, ok := s.data[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	if progress.Expired(s.now(), s.ttl) {
		_ = s.Delete(ctx, sessionID)
		return nil, domain.ErrProgressNotFound
	}
	return progress.Clone(), nil
}

// Delete removes the progress.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns sessions that have not expired.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	sessions := make([]string, 0, len(s.data))
	for id, p := range s.data {
		if p.Expired(now, s.ttl) {
			continue
		}
		sessions = append(sessions, id)
	}
	return sessions, nil
}
