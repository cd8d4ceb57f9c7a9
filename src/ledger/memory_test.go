package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfai-labs/selfai/src/companions"
)

func TestMemory_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Record(ctx, &Entry{TokenID: 1, ActionType: companions.ActionPost, Content: string(rune('a' + i))}))
	}
	require.NoError(t, m.Record(ctx, &Entry{TokenID: 2, ActionType: companions.ActionSummarize}))

	got, err := m.Recent(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Content)
	assert.Equal(t, "b", got[1].Content)
	assert.False(t, got[0].CreatedAt.IsZero())
	assert.Greater(t, got[0].ID, got[1].ID)

	none, err := m.Recent(ctx, 99, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemory_KeepsBoundedHistory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for i := 0; i < MaxLimit+25; i++ {
		require.NoError(t, m.Record(ctx, &Entry{TokenID: 1}))
	}
	got, err := m.Recent(ctx, 1, MaxLimit*2)
	require.NoError(t, err)
	assert.Len(t, got, MaxLimit)
	assert.Equal(t, uint64(MaxLimit+25), got[0].ID)
}
