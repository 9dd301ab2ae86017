package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/kfreiman/piigate/internal/retry"
	"github.com/kfreiman/piigate/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	sm, err := storage.NewStorageManager(storage.StorageConfig{
		BasePath:   "/piigate",
		FileSystem: storage.NewMemMapFileSystem(),
	})
	require.NoError(t, err)
	return NewFileStore(sm).WithRetryConfig(retry.Config{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
		Backoff:     retry.BackoffExponential,
	})
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file":   func(t *testing.T) Store { return newFileStore(t) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

			_, err := store.GetThread(ctx, "t1")
			assert.True(t, IsNotFound(err))

			thread := Thread{ID: "t1", RecruiterID: "r1", RecruiterName: "Michael Chen", LastMessageTime: base}
			require.NoError(t, store.SaveThread(ctx, thread))
			require.NoError(t, store.SaveThread(ctx, Thread{ID: "t10", RecruiterID: "r2"}))

			got, err := store.GetThread(ctx, "t1")
			require.NoError(t, err)
			assert.Equal(t, "Michael Chen", got.RecruiterName)
			assert.True(t, got.LastMessageTime.Equal(base))

			threads, err := store.ListThreads(ctx)
			require.NoError(t, err)
			require.Len(t, threads, 2)
			assert.Equal(t, "t1", threads[0].ID)

			msgs := []Message{
				{ID: "m2", ThreadID: "t1", Content: "second", Timestamp: base.Add(2 * time.Minute)},
				{ID: "m1", ThreadID: "t1", Content: "first", Timestamp: base.Add(time.Minute)},
				{ID: "m3", ThreadID: "t10", Content: "other thread", Timestamp: base},
			}
			for _, m := range msgs {
				require.NoError(t, store.SaveMessage(ctx, m))
			}

			list, err := store.ListMessages(ctx, "t1")
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "first", list[0].Content)
			assert.Equal(t, "second", list[1].Content)

			m, err := store.GetMessage(ctx, "t10", "m3")
			require.NoError(t, err)
			assert.Equal(t, "other thread", m.Content)

			_, err = store.GetMessage(ctx, "t1", "m3")
			assert.True(t, IsNotFound(err))

			empty, err := store.ListMessages(ctx, "none")
			require.NoError(t, err)
			assert.Empty(t, empty)

			require.NoError(t, store.DeleteMessage(ctx, "t1", "m1"))
			_, err = store.GetMessage(ctx, "t1", "m1")
			assert.True(t, IsNotFound(err))
			assert.True(t, IsNotFound(store.DeleteMessage(ctx, "t1", "m1")))

			_, err = store.GetThread(ctx, "a..b")
			assert.True(t, IsNotFound(err))
			_, err = store.GetMessage(ctx, "x\\y", "m1")
			assert.True(t, IsNotFound(err))
		})
	}
}

func TestService_UnsafeThreadIDs(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file":   func(t *testing.T) Store { return newFileStore(t) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := newTestService(t, newStore(t))

			for _, id := range []string{"a..b", "x\\y", "a/b", "nul\x00"} {
				_, err := svc.CreateThread(ctx, Thread{ID: id, RecruiterID: "rec-1"})
				require.Error(t, err, "id %q", id)
				assert.True(t, IsValidation(err), "id %q: %v", id, err)

				_, err = svc.Send(ctx, SendRequest{ThreadID: id, Content: "hello"})
				assert.True(t, IsNotFound(err), "id %q: %v", id, err)

				_, err = svc.History(ctx, id, HistoryOptions{Redact: true})
				assert.True(t, IsNotFound(err), "id %q: %v", id, err)
			}

			threads, err := svc.ListThreads(ctx)
			require.NoError(t, err)
			assert.Empty(t, threads)
		})
	}
}

func TestFileStore_Service(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFileStore(t))
	createThread(t, svc, "t1")

	_, err := svc.Send(ctx, SendRequest{ThreadID: "t1", Content: "Looking forward to it"})
	require.NoError(t, err)

	_, err = svc.Send(ctx, SendRequest{ThreadID: "t1", Content: "My card is 4111 1111 1111 1111"})
	_, blocked := IsBlocked(err)
	assert.True(t, blocked)

	msgs, err := svc.History(ctx, "t1", HistoryOptions{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Looking forward to it", msgs[0].Content)
}

func TestErrors(t *testing.T) {
	assert.Equal(t, "validation failed for content: message must not be empty",
		(&ValidationError{Field: "content", Reason: "message must not be empty"}).Error())
	assert.Equal(t, "validation failed for sender_type 'x': bad",
		(&ValidationError{Field: "sender_type", Value: "x", Reason: "bad"}).Error())
	assert.Equal(t, "thread not found: t9", (&NotFoundError{Kind: "thread", ID: "t9"}).Error())
}
