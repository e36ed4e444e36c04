package tokenstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, ok, err := store.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, KeyAuthToken, "abc"))

	value, ok, err := store.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", value)

	require.NoError(t, store.Remove(ctx, KeyAuthToken))

	_, ok, err = store.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_RemoveAbsentKey(t *testing.T) {
	store := NewMemoryStore()
	assert.NoError(t, store.Remove(context.Background(), KeyAuthUser))
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, KeyAuthToken, "tok"))
	require.NoError(t, store.Set(ctx, KeyAuthUser, `{"id":1}`))
	require.NoError(t, store.Remove(ctx, KeyAuthToken))

	value, ok, err := store.Get(ctx, KeyAuthUser)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"id":1}`, value)
}
