package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadreach/internal/config"
)

func exerciseBlobStore(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, KeyLeads)
	assert.ErrorIs(t, err, ErrBlobNotFound)

	require.NoError(t, store.Put(ctx, KeyLeads, []byte(`[{"leadId":"a"}]`)))
	got, err := store.Get(ctx, KeyLeads)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"leadId":"a"}]`, string(got))

	require.NoError(t, store.Put(ctx, KeyLeads, []byte(`[]`)))
	got, err = store.Get(ctx, KeyLeads)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	assert.NoError(t, store.Ping(ctx))
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	exerciseBlobStore(t, store)

	_, err = os.Stat(filepath.Join(dir, "leads.json"))
	assert.NoError(t, err, "file driver keeps one <key>.json per resource")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestBadgerStore(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	exerciseBlobStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	db, err := NewDBConnection("sqlite3", sqlitePath(t.TempDir()))
	require.NoError(t, err)
	store, err := NewSQLStore(db, DialectSQLite)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	exerciseBlobStore(t, store)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	store, err := NewRedisStore(addr, "", 15)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.client.Del(context.Background(), redisKeyPrefix+KeyLeads)
		store.Close()
	})
	exerciseBlobStore(t, store)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.StorageConfig{Driver: "mongo"})
	assert.Error(t, err)
}

func TestOpen_File(t *testing.T) {
	store, err := Open(config.StorageConfig{Driver: "file", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)
}
