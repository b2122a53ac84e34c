// internal/storage/encrypted_test.go
package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncryptedStore(t *testing.T, secret string) (*EncryptedStore, *SQLiteStore) {
	t.Helper()

	inner, err := NewSQLiteStore(filepath.Join(t.TempDir(), "daylog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { inner.Close() })

	store, err := NewEncryptedStore(inner, secret)
	require.NoError(t, err)
	return store, inner
}

func TestEncryptedStore_RoundTrip(t *testing.T) {
	store, _ := newTestEncryptedStore(t, "master-secret")
	ctx := context.Background()
	key := "ingrid-3-9-2024-images"
	value := `[{"time":"3/9/2024, 8:00:00 AM","uri":"spool/a.png","info":null}]`

	require.NoError(t, store.Set(ctx, key, value))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestEncryptedStore_ValueIsNotStoredInPlaintext(t *testing.T) {
	store, inner := newTestEncryptedStore(t, "master-secret")
	ctx := context.Background()
	key := "ingrid-3-9-2024-images"
	value := `[{"time":"t","uri":"spool/a.png","info":"grilled cheese"}]`

	require.NoError(t, store.Set(ctx, key, value))

	raw, err := inner.Get(ctx, key)
	require.NoError(t, err)
	assert.NotEqual(t, value, raw)
	assert.NotContains(t, raw, "grilled cheese")
}

func TestEncryptedStore_WrongSecretFailsToDecrypt(t *testing.T) {
	inner, err := NewSQLiteStore(filepath.Join(t.TempDir(), "daylog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { inner.Close() })

	writer, err := NewEncryptedStore(inner, "secret-one")
	require.NoError(t, err)
	reader, err := NewEncryptedStore(inner, "secret-two")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, writer.Set(ctx, "k", "v"))

	_, err = reader.Get(ctx, "k")
	assert.Error(t, err)
}

func TestEncryptedStore_ValueIsBoundToItsKey(t *testing.T) {
	store, inner := newTestEncryptedStore(t, "master-secret")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "day-one", "entries"))

	// Replay day-one's ciphertext under another key.
	sealed, err := inner.Get(ctx, "day-one")
	require.NoError(t, err)
	require.NoError(t, inner.Set(ctx, "day-two", sealed))

	_, err = store.Get(ctx, "day-two")
	assert.Error(t, err)
}

func TestEncryptedStore_DeletePassesThrough(t *testing.T) {
	store, _ := newTestEncryptedStore(t, "master-secret")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))

	removed, err := store.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
