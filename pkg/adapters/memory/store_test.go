package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/surveylogic/pkg/adapters/memory"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunProgressStoreContract(t, store)
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore(
		memory.WithTTL(7*24*time.Hour),
		memory.WithClock(func() time.Time { return now }),
	)

	p := domain.NewProgress("s1", "survey")
	p.SavedAt = now.Add(-6 * 24 * time.Hour)
	require.NoError(t, store.Save(ctx, "s1", p))

	_, err := store.Load(ctx, "s1")
	require.NoError(t, err)

	now = now.Add(2 * 24 * time.Hour)
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrProgressNotFound)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
