package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/ports"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS progress (
	session_id TEXT PRIMARY KEY,
	survey_id  TEXT NOT NULL,
	status     TEXT NOT NULL,
	data       TEXT NOT NULL,
	saved_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS progress_saved_at ON progress(saved_at);
`

// Store implements ports.ProgressStore on a single SQLite database file.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithTTL hides rows saved more than ttl ago.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = filepath.Join(".surveylogic", "progress.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate progress schema: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ ports.ProgressStore = (*Store)(nil)

func (s *Store) Save(ctx context.Context, sessionID string, progress *domain.Progress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO progress (session_id, survey_id, status, data, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			survey_id = excluded.survey_id,
			status = excluded.status,
			data = excluded.data,
			saved_at = excluded.saved_at`,
		sessionID, progress.SurveyID, string(progress.Status), string(data), s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	var (
		data    string
		savedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT data, saved_at FROM progress WHERE session_id = ?`, sessionID,
	).Scan(&data, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if s.expired(savedAt) {
		_ = s.Delete(ctx, sessionID)
		return nil, domain.ErrProgressNotFound
	}

	var progress domain.Progress
	if err := json.Unmarshal([]byte(data), &progress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	if progress.Answers == nil {
		progress.Answers = domain.Answers{}
	}
	return &progress, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}

// List returns live session ids, oldest save first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	cutoff := int64(0)
	if s.ttl > 0 {
		cutoff = s.now().Add(-s.ttl).UnixNano()
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id FROM progress WHERE saved_at >= ? ORDER BY saved_at, session_id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Purge deletes expired rows and reports how many were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM progress WHERE saved_at < ?`, s.now().Add(-s.ttl).UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge progress: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) expired(savedAt int64) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(time.Unix(0, savedAt)) > s.ttl
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
