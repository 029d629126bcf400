package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chia-network/gochia/chia/consensus"
	"github.com/chia-network/gochia/chia/types"
)

func TestUnfinishedBlockTable(t *testing.T) {
	table := NewUnfinishedBlockTable()
	hash := consensus.Hash32{9}
	block := &types.UnfinishedBlock{}

	_, ok := table.Get(hash)
	require.False(t, ok)

	table.Add(hash, 1, block)
	got, ok := table.Get(hash)
	require.True(t, ok)
	require.Same(t, block, got)
	require.Equal(t, 1, table.Len())

	table.Remove(hash)
	_, ok = table.Get(hash)
	require.False(t, ok)
}

func TestUnfinishedBlockTable_ClearBelow(t *testing.T) {
	table := NewUnfinishedBlockTable()
	low := consensus.Hash32{1}
	high := consensus.Hash32{2}
	table.Add(low, 5, &types.UnfinishedBlock{})
	table.Add(high, 50, &types.UnfinishedBlock{})

	table.ClearBelow(10)

	_, ok := table.Get(low)
	require.False(t, ok)
	_, ok = table.Get(high)
	require.True(t, ok)
}

func TestCandidateBlockTable_ClearBelow(t *testing.T) {
	table := NewCandidateBlockTable()
	low := consensus.Hash32{1}
	high := consensus.Hash32{2}
	table.Add(low, 5, &types.UnfinishedBlock{})
	table.Add(high, 50, &types.UnfinishedBlock{})

	table.ClearBelow(10)

	_, ok := table.Get(low)
	require.False(t, ok)
	_, ok = table.Get(high)
	require.True(t, ok)
}

func TestDisconnectedBlockTable_ByPrevHash(t *testing.T) {
	table := NewDisconnectedBlockTable()
	prev := consensus.Hash32{7}
	child := &types.FullBlock{Unfinished: types.UnfinishedBlock{PrevHeaderHash: prev}}
	child.SetHeight(3)
	table.Add(consensus.Hash32{8}, child)

	matches := table.ByPrevHash(prev)
	require.Len(t, matches, 1)
	require.Same(t, child, matches[0])

	table.ClearBelow(10)
	require.Empty(t, table.ByPrevHash(prev))
}

func TestSeenUnfinishedSet(t *testing.T) {
	set := NewSeenUnfinishedSet()
	hash := consensus.Hash32{3}

	require.False(t, set.MarkSeen(hash))
	require.True(t, set.MarkSeen(hash))

	set.Clear()
	require.False(t, set.MarkSeen(hash))
}
