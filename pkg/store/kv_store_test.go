package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestKV(t *testing.T, path string, readOnly bool) *KVStore {
	t.Helper()
	kv, err := NewKVStore(KVStoreConfig{FilePath: path, ReadOnly: readOnly})
	require.NoError(t, err)
	_, err = kv.Open()
	require.NoError(t, err)
	return kv
}

func TestKVStore_BasicOperations(t *testing.T) {
	kv := openTestKV(t, filepath.Join(t.TempDir(), "grid.gs"), false)
	defer kv.Close()

	require.NoError(t, kv.Put([]byte("test_key"), []byte("test_value")))

	value, err := kv.Get([]byte("test_key"))
	require.NoError(t, err)
	assert.Equal(t, "test_value", string(value))

	_, err = kv.Get([]byte("non_existent"))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Delete([]byte("test_key")))
	_, err = kv.Get([]byte("test_key"))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// deleting twice is fine
	assert.NoError(t, kv.Delete([]byte("test_key")))
}

func TestKVStore_UpdateValue(t *testing.T) {
	kv := openTestKV(t, filepath.Join(t.TempDir(), "grid.gs"), false)
	defer kv.Close()

	require.NoError(t, kv.Put([]byte("k"), []byte("initial")))
	require.NoError(t, kv.Put([]byte("k"), []byte("updated")))

	value, err := kv.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "updated", string(value))
	assert.Equal(t, 1, kv.Stats().Keys)
}

func TestKVStore_EmptyValueIsNotDelete(t *testing.T) {
	kv := openTestKV(t, filepath.Join(t.TempDir(), "grid.gs"), false)
	defer kv.Close()

	require.NoError(t, kv.Put([]byte("k"), []byte{}))
	value, err := kv.Get([]byte("k"))
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestKVStore_InvalidKey(t *testing.T) {
	kv := openTestKV(t, filepath.Join(t.TempDir(), "grid.gs"), false)
	defer kv.Close()

	assert.ErrorIs(t, kv.Put(nil, []byte("v")), ErrInvalidKey)
}

func TestKVStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.gs")

	kv := openTestKV(t, path, false)
	for i := 0; i < 20; i++ {
		require.NoError(t, kv.Put([]byte(fmt.Sprintf("/k%02d", i)), []byte(fmt.Sprintf("v%d", i))))
	}
	require.NoError(t, kv.Delete([]byte("/k05")))
	require.NoError(t, kv.Close())

	kv = openTestKV(t, path, false)
	defer kv.Close()

	value, err := kv.Get([]byte("/k19"))
	require.NoError(t, err)
	assert.Equal(t, "v19", string(value))

	_, err = kv.Get([]byte("/k05"))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	keys, err := kv.ListKeys([]byte("/k1"))
	require.NoError(t, err)
	assert.Len(t, keys, 10)
	assert.Equal(t, "/k10", keys[0])
	assert.Equal(t, "/k19", keys[9])
}

func TestKVStore_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.gs")

	kv := openTestKV(t, path, false)
	require.NoError(t, kv.Put([]byte("k"), []byte("v")))
	require.NoError(t, kv.Close())

	ro := openTestKV(t, path, true)
	defer ro.Close()

	value, err := ro.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(value))

	assert.ErrorIs(t, ro.Put([]byte("k2"), []byte("v")), ErrReadOnly)
	assert.ErrorIs(t, ro.Delete([]byte("k")), ErrReadOnly)
	assert.NoError(t, ro.Sync())
	assert.Greater(t, ro.Stats().DataSize, int64(0))
}

func TestKVStore_ReadOnlyMissingFile(t *testing.T) {
	kv, err := NewKVStore(KVStoreConfig{FilePath: filepath.Join(t.TempDir(), "missing.gs"), ReadOnly: true})
	require.NoError(t, err)

	_, err = kv.Open()
	assert.True(t, os.IsNotExist(err))
}

func TestKVStore_Closed(t *testing.T) {
	kv := openTestKV(t, filepath.Join(t.TempDir(), "grid.gs"), false)
	require.NoError(t, kv.Close())

	_, err := kv.Get([]byte("k"))
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, kv.Put([]byte("k"), []byte("v")), ErrStoreClosed)
	_, err = kv.ListKeys(nil)
	assert.ErrorIs(t, err, ErrStoreClosed)

	// closing twice is a no-op
	assert.NoError(t, kv.Close())
}

func TestNewKVStore_RequiresPath(t *testing.T) {
	_, err := NewKVStore(KVStoreConfig{})
	assert.Error(t, err)
}

func TestKVStore_StatsLiveSize(t *testing.T) {
	kv := openTestKV(t, filepath.Join(t.TempDir(), "grid.gs"), false)
	defer kv.Close()

	require.NoError(t, kv.Put([]byte("k"), []byte("first")))
	before := kv.Stats()
	assert.Equal(t, before.DataSize, before.LiveSize)

	require.NoError(t, kv.Put([]byte("k"), []byte("again")))
	after := kv.Stats()
	assert.Equal(t, before.LiveSize, after.LiveSize)
	assert.Less(t, after.LiveSize, after.DataSize)
}
