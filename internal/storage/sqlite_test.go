// internal/storage/sqlite_test.go
package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "daylog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_GetMissingKey(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.Get(context.Background(), "ingrid-3-9-2024-images")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_SetGetRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	key := "ingrid-3-9-2024-images"
	value := `[{"time":"3/9/2024, 8:00:00 AM","uri":"spool/a.png","info":null}]`

	require.NoError(t, store.Set(ctx, key, value))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestSQLiteStore_SetOverwrites(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	key := "ingrid-3-9-2024-images"

	require.NoError(t, store.Set(ctx, key, `[]`))
	require.NoError(t, store.Set(ctx, key, `[{"time":"t","uri":"u","info":"x"}]`))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[{"time":"t","uri":"u","info":"x"}]`, got)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	key := "ingrid-3-9-2024-images"

	require.NoError(t, store.Set(ctx, key, `[]`))

	removed, err := store.Delete(ctx, key)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err = store.Delete(ctx, key)
	require.NoError(t, err)
	assert.False(t, removed, "deleting an absent key reports nothing removed")
}

func TestSQLiteStore_KeysAreIndependent(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "ingrid-3-9-2024-images", `["day one"]`))
	require.NoError(t, store.Set(ctx, "ingrid-3-10-2024-images", `["day two"]`))

	_, err := store.Delete(ctx, "ingrid-3-9-2024-images")
	require.NoError(t, err)

	got, err := store.Get(ctx, "ingrid-3-10-2024-images")
	require.NoError(t, err)
	assert.Equal(t, `["day two"]`, got)
}
