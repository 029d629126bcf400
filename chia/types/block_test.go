package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chia-network/gochia/chia/consensus"
)

func TestSubBlockRecord_Height(t *testing.T) {
	r := NewSubBlockRecord(consensus.Hash32{1}, consensus.Hash32{}, 42, consensus.NewUint128(1), consensus.NewUint128(1), 0, 0, false, consensus.Hash32{})
	require.EqualValues(t, 42, r.Height())
}

func TestFullBlock_HeaderHash_IsDeterministic(t *testing.T) {
	b := &FullBlock{
		ChallengeChainIPVDF: VDFInfo{Challenge: consensus.Hash32{1}, NumberOfIterations: 10},
		RewardChainIPVDF:    VDFInfo{Challenge: consensus.Hash32{2}, NumberOfIterations: 10},
	}
	b.SetHeight(5)

	h1, err := b.HeaderHash()
	require.NoError(t, err)
	h2, err := b.HeaderHash()
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	other := *b
	other.SetHeight(6)
	h3, err := other.HeaderHash()
	require.NoError(t, err)
	require.NotEqual(t, h1, h3)
}

func TestUnfinishedBlock_PartialRewardChainHash(t *testing.T) {
	u := &UnfinishedBlock{RewardChainSubBlock: RewardChainSubSlot{Deficit: 3}}
	h1, err := u.PartialRewardChainHash()
	require.NoError(t, err)

	u2 := &UnfinishedBlock{RewardChainSubBlock: RewardChainSubSlot{Deficit: 4}}
	h2, err := u2.PartialRewardChainHash()
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
}
