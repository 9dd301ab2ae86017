package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *MessageIndex {
	t.Helper()
	idx, err := NewMessageIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestMessageIndex_Search(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, Document{ID: "m1", ThreadID: "t-1", Text: "Interview scheduled for Tuesday"}))
	require.NoError(t, idx.Index(ctx, Document{ID: "m2", ThreadID: "t-2", Text: "Clearance paperwork is ready"}))
	require.NoError(t, idx.Index(ctx, Document{ID: "m3", ThreadID: "t-1", Text: "Can we move the interview to Friday?"}))

	hits, err := idx.Search(ctx, "interview", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	ids := []string{hits[0].ID, hits[1].ID}
	assert.ElementsMatch(t, []string{"m1", "m3"}, ids)
	for _, h := range hits {
		assert.Equal(t, "t-1", h.ThreadID)
		assert.Greater(t, h.Score, 0.0)
	}

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestMessageIndex_Limit(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, idx.Index(ctx, Document{ID: id, ThreadID: "t", Text: "offer letter"}))
	}

	hits, err := idx.Search(ctx, "offer", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestMessageIndex_Delete(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, Document{ID: "m1", ThreadID: "t", Text: "salary expectations"}))
	require.NoError(t, idx.Delete("m1"))

	hits, err := idx.Search(ctx, "salary", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMessageIndex_Errors(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	_, err := idx.Search(ctx, "   ", 10)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	assert.Error(t, idx.Index(ctx, Document{Text: "no id"}))
}
