// Package testutils loads the shared evaluation fixtures used by engine, session
// and HTTP tests, so every surface is checked against the same expectations.
package testutils

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aretw0/surveylogic/internal/compiler"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Fixture is one survey with its evaluation cases.
type Fixture struct {
	Name   string
	Path   string
	Survey *domain.Survey
	Cases  []Case
}

// Case is one answer set and the evaluation every surface must return for it.
type Case struct {
	Name    string
	Answers map[string]any
	Request domain.EvaluateRequest
	Expect  domain.EvaluateResponse
}

type fixtureDoc struct {
	Name   string         `yaml:"name"`
	Survey map[string]any `yaml:"survey"`
	Cases  []struct {
		Name    string         `yaml:"name"`
		Current string         `yaml:"current"`
		Answers map[string]any `yaml:"answers"`
		Expect  struct {
			Visible []string `yaml:"visible"`
			Hidden  []string `yaml:"hidden"`
			Next    *string  `yaml:"next"`
			End     bool     `yaml:"end"`
		} `yaml:"expect"`
	} `yaml:"cases"`
}

// ModuleRoot walks up from the working directory to the directory holding go.mod.
func ModuleRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found above working directory")
		dir = parent
	}
}

// FixturesDir returns the absolute path of testdata/fixtures.
func FixturesDir(t *testing.T) string {
	t.Helper()
	return filepath.Join(ModuleRoot(t), "testdata", "fixtures")
}

// LoadFixtures parses every fixture file, in file name order.
func LoadFixtures(t *testing.T) []Fixture {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join(FixturesDir(t), "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no fixtures found")
	sort.Strings(paths)

	fixtures := make([]Fixture, 0, len(paths))
	for _, path := range paths {
		fixtures = append(fixtures, loadFixture(t, path))
	}
	return fixtures
}

func loadFixture(t *testing.T, path string) Fixture {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc fixtureDoc
	require.NoError(t, yaml.Unmarshal(data, &doc), path)

	survey, err := compiler.NewParser().FromMap(doc.Survey)
	require.NoError(t, err, path)

	f := Fixture{Name: doc.Name, Path: path, Survey: survey}
	for _, c := range doc.Cases {
		req := domain.EvaluateRequest{CurrentQuestionID: c.Current, Answers: []domain.AnswerEntry{}}
		ids := make([]string, 0, len(c.Answers))
		for id := range c.Answers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			a, err := domain.FromValue(c.Answers[id])
			require.NoError(t, err, "%s: case %q answer %s", path, c.Name, id)
			req.Answers = append(req.Answers, domain.AnswerEntry{QuestionID: id, Value: a})
		}

		f.Cases = append(f.Cases, Case{
			Name:    c.Name,
			Answers: c.Answers,
			Request: req,
			Expect: domain.EvaluateResponse{
				VisibleQuestionIDs: nonNil(c.Expect.Visible),
				HiddenQuestionIDs:  nonNil(c.Expect.Hidden),
				NextQuestionID:     c.Expect.Next,
				ShouldEndSurvey:    c.Expect.End,
			},
		})
	}
	return f
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
