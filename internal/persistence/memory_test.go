package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, ok, err := store.Load(ctx, KeyBookingDraft)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, KeyBookingDraft, `{"isAssessment":true}`))
	v, ok, err := store.Load(ctx, KeyBookingDraft)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"isAssessment":true}`, v)

	require.NoError(t, store.Delete(ctx, KeyBookingDraft))
	_, ok, err = store.Load(ctx, KeyBookingDraft)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Delete(ctx, "never-written"))
}

func TestMemoryStoreRejectsEmptyKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	assert.ErrorIs(t, store.Save(ctx, "", "x"), ErrEmptyKey)
	_, _, err := store.Load(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, store.Delete(ctx, ""), ErrEmptyKey)
}
