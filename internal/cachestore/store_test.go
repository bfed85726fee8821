package cachestore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/jellymatch/internal/match"
)

func testResult(id int64, title string) match.Result {
	return match.Result{
		ID:         &id,
		Title:      &title,
		Confidence: 0.92,
		Tier:       match.TierHigh,
		Query:      "test query",
	}
}

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SetGet(t *testing.T) {
	store := openTestStore(t, time.Hour)

	require.NoError(t, store.Set("breaking bad|2008|en-us", testResult(1396, "Breaking Bad")))

	res, ok, err := store.Get("breaking bad|2008|en-us")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1396), *res.ID)
	assert.Equal(t, "Breaking Bad", *res.Title)
	assert.Equal(t, match.TierHigh, res.Tier)
}

func TestStore_MissingKey(t *testing.T) {
	store := openTestStore(t, time.Hour)

	_, ok, err := store.Get("nothing here")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Upsert(t *testing.T) {
	store := openTestStore(t, time.Hour)

	require.NoError(t, store.Set("key", testResult(1, "First")))
	require.NoError(t, store.Set("key", testResult(2, "Second")))

	res, ok, err := store.Get("key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), *res.ID)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalEntries)
}

func TestStore_ExpiredEntriesReadAsMisses(t *testing.T) {
	store := openTestStore(t, time.Millisecond)

	require.NoError(t, store.Set("key", testResult(1, "Ephemeral")))
	time.Sleep(1100 * time.Millisecond)

	_, ok, err := store.Get("key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Cleanup(t *testing.T) {
	store := openTestStore(t, time.Millisecond)

	require.NoError(t, store.Set("a", testResult(1, "A")))
	require.NoError(t, store.Set("b", testResult(2, "B")))
	time.Sleep(1100 * time.Millisecond)

	removed, err := store.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalEntries)
}

func TestStore_ClearAndDelete(t *testing.T) {
	store := openTestStore(t, time.Hour)

	require.NoError(t, store.Set("a", testResult(1, "A")))
	require.NoError(t, store.Set("b", testResult(2, "B")))

	require.NoError(t, store.Delete("a"))
	_, ok, err := store.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Clear())
	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalEntries)
}

func TestStore_BackupRestore(t *testing.T) {
	dir := t.TempDir()
	store := openTestStore(t, time.Hour)

	require.NoError(t, store.Set("keep", testResult(10, "Kept")))

	backupPath := filepath.Join(dir, "backup.db")
	require.NoError(t, store.Backup(backupPath))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Restore(backupPath))

	res, ok, err := store.Get("keep")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(10), *res.ID)
}

func TestStore_RestoreMissingFile(t *testing.T) {
	store := openTestStore(t, time.Hour)
	assert.Error(t, store.Restore(filepath.Join(t.TempDir(), "absent.db")))
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open("", time.Hour)
	assert.Error(t, err)
}
