package tests

import (
	"context"
	"testing"

	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/ports"
)

// SurveyLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.SurveyLoader.
// expected maps survey IDs to the question IDs each survey must contain, in display order.
func SurveyLoaderContractTest(t *testing.T, loader ports.SurveyLoader, expected map[string][]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		for id, wantQuestions := range expected {
			survey, err := loader.Load(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error loading survey %s: %v", id, err)
			}
			if survey.ID != id {
				t.Errorf("expected survey id %s, got %s", id, survey.ID)
			}
			got := domain.QuestionIDs(domain.SortQuestions(survey.Questions))
			if len(got) != len(wantQuestions) {
				t.Fatalf("survey %s: expected questions %v, got %v", id, wantQuestions, got)
			}
			for i := range got {
				if got[i] != wantQuestions[i] {
					t.Errorf("survey %s: expected questions %v, got %v", id, wantQuestions, got)
					break
				}
			}
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, "non_existent_survey_12345")
		if err == nil {
			t.Error("expected error for non-existent survey, got nil")
		}
	})

	t.Run("List", func(t *testing.T) {
		ids, err := loader.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing surveys: %v", err)
		}
		found := make(map[string]bool)
		for _, id := range ids {
			found[id] = true
		}
		for id := range expected {
			if !found[id] {
				t.Errorf("expected survey %s in list", id)
			}
		}
	})
}
