package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*StorageManager, FileSystem) {
	t.Helper()
	fs := NewMemMapFileSystem()
	sm, err := NewStorageManager(StorageConfig{
		BasePath:   "/test-storage",
		DefaultTTL: time.Hour,
		FileSystem: fs,
	})
	require.NoError(t, err)
	return sm, fs
}

func TestStorageManager_NewStorageManager(t *testing.T) {
	t.Run("creates with defaults when config is empty", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		sm, err := NewStorageManager(StorageConfig{})
		require.NoError(t, err)
		require.NotNil(t, sm)

		assert.Equal(t, "./storage", sm.basePath)
		assert.Equal(t, 30*24*time.Hour, sm.defaultTTL)
		assert.NotNil(t, sm.logger)
		assert.NotNil(t, sm.fs)
		assert.DirExists(t, filepath.Join(dir, "storage", "threads"))
	})

	t.Run("uses provided config values", func(t *testing.T) {
		sm, _ := newTestManager(t)

		assert.Equal(t, "/test-storage", sm.basePath)
		assert.Equal(t, time.Hour, sm.defaultTTL)
	})
}

func TestStorageManager_IsAccessible(t *testing.T) {
	t.Run("accessible when all directories exist", func(t *testing.T) {
		sm, _ := newTestManager(t)
		assert.True(t, sm.IsAccessible())
	})

	t.Run("inaccessible after removing base path", func(t *testing.T) {
		sm, fs := newTestManager(t)
		require.NoError(t, fs.RemoveAll("/test-storage"))
		assert.False(t, sm.IsAccessible())
	})

	t.Run("inaccessible after removing messages directory", func(t *testing.T) {
		sm, fs := newTestManager(t)
		require.NoError(t, fs.Remove(filepath.Join("/test-storage", "messages")))
		assert.False(t, sm.IsAccessible())
	})
}

func TestStorageManager_SaveAndReadRecord(t *testing.T) {
	sm, _ := newTestManager(t)

	uri, err := sm.SaveRecord(RecordKindThread, "t1", []byte(`{"id":"t1"}`))
	require.NoError(t, err)
	assert.Equal(t, "thread://t1", uri)
	assert.True(t, sm.RecordExists(uri))

	data, err := sm.ReadRecord(uri)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"t1"}`, string(data))

	t.Run("overwrites previous version", func(t *testing.T) {
		_, err := sm.SaveRecord(RecordKindThread, "t1", []byte(`{"id":"t1","v":2}`))
		require.NoError(t, err)

		data, err := sm.ReadRecord(uri)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"t1","v":2}`, string(data))

		ids, err := sm.ListRecords(RecordKindThread, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"t1"}, ids)
	})

	t.Run("rejects unknown kinds and unsafe ids", func(t *testing.T) {
		_, err := sm.SaveRecord(RecordKind("docs"), "x", nil)
		assert.Error(t, err)

		for _, id := range []string{"", "../escape", "a/b", "nul\x00"} {
			_, err := sm.SaveRecord(RecordKindMessage, id, nil)
			assert.Error(t, err, "id %q", id)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := sm.ReadRecord("message://missing")
		require.Error(t, err)

		var storageErr *StorageError
		require.True(t, errors.As(err, &storageErr))
		assert.True(t, storageErr.IsRetryable())
		assert.True(t, errors.Is(err, os.ErrNotExist))
		assert.False(t, sm.RecordExists("message://missing"))
	})
}

func TestStorageManager_DeleteRecord(t *testing.T) {
	sm, _ := newTestManager(t)

	uri, err := sm.SaveRecord(RecordKindMessage, "m1", []byte("{}"))
	require.NoError(t, err)

	require.NoError(t, sm.DeleteRecord(uri))
	assert.False(t, sm.RecordExists(uri))
	assert.Error(t, sm.DeleteRecord(uri))
}

func TestStorageManager_ListRecords(t *testing.T) {
	sm, _ := newTestManager(t)

	for _, id := range []string{"a_2", "a_1", "b_1"} {
		_, err := sm.SaveRecord(RecordKindMessage, id, []byte("{}"))
		require.NoError(t, err)
	}

	ids, err := sm.ListRecords(RecordKindMessage, "a_")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_1", "a_2"}, ids)

	all, err := sm.ListRecords(RecordKindMessage, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	stats, err := sm.GetStorageStats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats[RecordKindMessage])
	assert.Equal(t, int64(0), stats[RecordKindThread])
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri     string
		kind    RecordKind
		id      string
		wantErr bool
	}{
		{"thread://abc", RecordKindThread, "abc", false},
		{"message://t_m", RecordKindMessage, "t_m", false},
		{"cv://abc", "", "", true},
		{"thread://", "", "", true},
		{"message://../x", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			kind, id, err := ParseURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				var storageErr *StorageError
				require.True(t, errors.As(err, &storageErr))
				assert.False(t, storageErr.IsRetryable())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.uri, FormatURI(kind, id))
		})
	}
}

func TestStorageError_Error(t *testing.T) {
	err := &StorageError{Operation: "save record", Path: "/p", Err: errors.New("disk full")}
	assert.Equal(t, "storage error during save record (path: /p): disk full", err.Error())

	assert.Equal(t, "storage error during list records", (&StorageError{Operation: "list records"}).Error())
}

func TestStorageManager_Cleanup(t *testing.T) {
	t.Run("removes records older than the ttl", func(t *testing.T) {
		sm, fs := newTestManager(t)

		_, err := sm.SaveRecord(RecordKindMessage, "old", []byte("{}"))
		require.NoError(t, err)
		_, err = sm.SaveRecord(RecordKindMessage, "fresh", []byte("{}"))
		require.NoError(t, err)

		past := time.Now().Add(-2 * time.Hour)
		require.NoError(t, fs.Chtimes(filepath.Join("/test-storage", "messages", "old.json"), past, past))

		removed, err := sm.Cleanup(0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
		assert.False(t, sm.RecordExists("message://old"))
		assert.True(t, sm.RecordExists("message://fresh"))
	})

	t.Run("keeps records within an explicit ttl", func(t *testing.T) {
		sm, _ := newTestManager(t)

		_, err := sm.SaveRecord(RecordKindThread, "t", []byte("{}"))
		require.NoError(t, err)

		removed, err := sm.Cleanup(24 * time.Hour)
		require.NoError(t, err)
		assert.Equal(t, int64(0), removed)
	})
}

func TestFileSystemConstructors(t *testing.T) {
	require.NotNil(t, NewOSFileSystem())
	require.NotNil(t, NewMemMapFileSystem())

	fs := NewAferoFileSystem(afero.NewMemMapFs())
	require.NoError(t, fs.MkdirAll("/x", 0755))
	require.NoError(t, fs.WriteFile("/x/a", []byte("1"), 0644))
	require.NoError(t, fs.Rename("/x/a", "/x/b"))

	data, err := fs.ReadFile("/x/b")
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))
}
