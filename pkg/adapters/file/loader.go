package file

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/surveylogic/internal/compiler"
	"github.com/aretw0/surveylogic/internal/validator"
	"github.com/aretw0/surveylogic/pkg/domain"
)

var surveyExtensions = []string{".yaml", ".yml", ".json"}

// Loader implements ports.SurveyLoader over a directory of survey documents.
// A survey's ID is the "id" field of its document, or the file name without
// extension when the field is absent. Documents are read on every Load.
type Loader struct {
	dir    string
	parser *compiler.Parser
	logger *slog.Logger
}

// LoaderOption configures the file loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used to report rule validation warnings.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader reading from dir.
func NewLoader(dir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		dir:    dir,
		parser: compiler.NewParser(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load finds and parses the survey with the given ID.
func (l *Loader) Load(ctx context.Context, surveyID string) (*domain.Survey, error) {
	// Fast path: a file named after the survey.
	for _, ext := range surveyExtensions {
		path := filepath.Join(l.dir, surveyID+ext)
		if _, err := os.Stat(path); err == nil {
			s, err := l.LoadFile(path)
			if err != nil {
				return nil, err
			}
			if s.ID == surveyID {
				return s, nil
			}
		}
	}

	paths, err := l.files()
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		s, err := l.LoadFile(path)
		if err != nil {
			l.logger.Warn("skipping unreadable survey document", "path", path, "err", err)
			continue
		}
		if s.ID == surveyID {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrSurveyNotFound, surveyID)
}

// LoadFile parses a single survey document.
func (l *Loader) LoadFile(path string) (*domain.Survey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read survey %s: %w", path, err)
	}
	s, err := l.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.ID == "" {
		s.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	for _, issue := range validator.Validate(s.Questions) {
		l.logger.Warn("survey rule issue",
			"survey", s.ID,
			"question", issue.QuestionID,
			"rule", issue.RuleID,
			"severity", issue.Severity,
			"msg", issue.Message)
	}
	return s, nil
}

// List returns the IDs of all parseable surveys in the directory.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	paths, err := l.files()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(paths))
	for _, path := range paths {
		s, err := l.LoadFile(path)
		if err != nil {
			l.logger.Warn("skipping unreadable survey document", "path", path, "err", err)
			continue
		}
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *Loader) files() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read survey directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range surveyExtensions {
			if ext == want {
				paths = append(paths, filepath.Join(l.dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}
