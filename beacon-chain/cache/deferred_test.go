package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chia-network/gochia/chia/consensus"
)

func TestDeferredCache_AddPop(t *testing.T) {
	d := NewDeferredCache[int]()
	challenge := consensus.Hash32{1}

	_, ok := d.Pop(challenge)
	require.False(t, ok)

	d.Add(challenge, 1)
	d.Add(challenge, 2)
	require.Equal(t, 1, d.Len())

	values, ok := d.Pop(challenge)
	require.True(t, ok)
	require.Equal(t, []int{1, 2}, values)
	require.Equal(t, 0, d.Len())
}

func TestDeferredCache_Prune(t *testing.T) {
	d := NewDeferredCache[string]()
	keepChallenge := consensus.Hash32{1}
	dropChallenge := consensus.Hash32{2}
	d.Add(keepChallenge, "a")
	d.Add(dropChallenge, "b")

	d.Prune(map[consensus.Hash32]struct{}{keepChallenge: {}})

	require.Equal(t, 1, d.Len())
	_, ok := d.Pop(dropChallenge)
	require.False(t, ok)
	values, ok := d.Pop(keepChallenge)
	require.True(t, ok)
	require.Equal(t, []string{"a"}, values)
}
