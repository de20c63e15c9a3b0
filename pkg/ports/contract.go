package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunProgressStoreContract runs a suite of tests to verify that a ProgressStore implementation
// adheres to the defined interface contract.
func RunProgressStoreContract(t *testing.T, store ProgressStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		progress := domain.NewProgress(sessionID, "survey-1")
		progress.ShareToken = "tok"
		progress.CurrentIndex = 2
		progress.SavedAt = time.Now().UTC().Truncate(time.Second)
		progress.Answers["text"] = domain.Text("hello")
		progress.Answers["num"] = domain.Float(4.5)
		progress.Answers["multi"] = domain.Choices("red", "blue")
		progress.Answers["grid"] = domain.Matrix(map[string]string{"speed": "good"})

		err := store.Save(ctx, sessionID, progress)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "survey-1", loaded.SurveyID)
		assert.Equal(t, "tok", loaded.ShareToken)
		assert.Equal(t, 2, loaded.CurrentIndex)
		assert.Equal(t, domain.StatusInProgress, loaded.Status)
		assert.True(t, progress.SavedAt.Equal(loaded.SavedAt))

		// Answer kinds must survive serialization.
		require.Len(t, loaded.Answers, 4)
		for id, want := range progress.Answers {
			assert.True(t, want.Equal(loaded.Answers[id]), "answer %s: got %+v", id, loaded.Answers[id])
		}
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Answers["text"] = domain.Text("mutated")

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "hello", again.Answers["text"].Text)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrProgressNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewProgress(sessionID, "survey-1"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrProgressNotFound, "Load after Delete should return ErrProgressNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewProgress(id1, "survey-1"))
		_ = store.Save(ctx, id2, domain.NewProgress(id2, "survey-1"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
