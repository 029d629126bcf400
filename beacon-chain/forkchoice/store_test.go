package forkchoice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chia-network/gochia/chia/consensus"
	"github.com/chia-network/gochia/chia/types"
)

// acceptAllVerifier treats every VDF proof as valid, so tests can focus on
// the store's chaining logic rather than proof content.
type acceptAllVerifier struct{}

func (acceptAllVerifier) Verify(*types.VDFInfo, *types.VDFProof) (bool, error) {
	return true, nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(consensus.Simulator(), acceptAllVerifier{}, nil)
}

// chainedEOS builds an EndOfSubSlotBundle whose challenge chain VDF
// challenges prevChallengeHash, and whose reward chain VDF challenges
// prevRewardHash, with the given deficit. Tests pass the full deficit
// (MinSubBlocksPerChallengeBlock) so they don't need to thread icc chaining
// through every slot.
func chainedEOS(prevChallengeHash, prevRewardHash consensus.Hash32, iters uint64, deficit uint8) *types.EndOfSubSlotBundle {
	return &types.EndOfSubSlotBundle{
		ChallengeChain: types.ChallengeChainSubSlot{
			ChallengeChainEndOfSlotVDF: types.VDFInfo{Challenge: prevChallengeHash, NumberOfIterations: iters},
		},
		RewardChain: types.RewardChainSubSlot{
			EndOfSlotVDF:              types.VDFInfo{Challenge: prevRewardHash, NumberOfIterations: iters},
			ChallengeChainSubSlotHash: prevChallengeHash,
			Deficit:                   deficit,
		},
		ChallengeChainVDFProof: types.VDFProof{Witness: []byte{1}},
		RewardChainVDFProof:    types.VDFProof{Witness: []byte{1}},
	}
}

func mustChallengeHash(t *testing.T, eos *types.EndOfSubSlotBundle) consensus.Hash32 {
	t.Helper()
	h, err := eos.ChallengeChainHash()
	require.NoError(t, err)
	return h
}

func mustRewardHash(t *testing.T, eos *types.EndOfSubSlotBundle) consensus.Hash32 {
	t.Helper()
	h, err := eos.RewardChainHash()
	require.NoError(t, err)
	return h
}

// seedRing bypasses validation to seed the ring with a single entry, the
// way NewPeak would after a genesis transition.
func seedRing(s *Store, eos *types.EndOfSubSlotBundle, totalIters uint64) {
	s.ring.append(newSlotEntry(eos, consensus.NewUint128(totalIters), s.constants.NumCheckpointsPerSlot))
}

func TestNewFinishedSubSlot_ChainsTwoEmptySlots(t *testing.T) {
	s := newTestStore(t)
	genesis := chainedEOS(consensus.Hash32{}, consensus.Hash32{}, 1000, s.constants.MinSubBlocksPerChallengeBlock)
	seedRing(s, genesis, 1000)

	second := chainedEOS(mustChallengeHash(t, genesis), mustRewardHash(t, genesis), 1000, s.constants.MinSubBlocksPerChallengeBlock)
	peak := &types.SubBlockRecord{TotalIters: consensus.NewUint128(1000), Deficit: s.constants.MinSubBlocksPerChallengeBlock}

	outcome, err := s.NewFinishedSubSlot(context.Background(), second, SubBlockRecords{}, peak)
	require.NoError(t, err)
	require.Equal(t, Accepted, outcome)
	require.Len(t, s.ring.entries, 2)

	third := chainedEOS(mustChallengeHash(t, second), mustRewardHash(t, second), 500, s.constants.MinSubBlocksPerChallengeBlock)
	outcome, err = s.NewFinishedSubSlot(context.Background(), third, SubBlockRecords{}, peak)
	require.NoError(t, err)
	require.Equal(t, Accepted, outcome)
	require.Len(t, s.ring.entries, 3)
}

func TestNewFinishedSubSlot_RejectsNonChaining(t *testing.T) {
	s := newTestStore(t)
	genesis := chainedEOS(consensus.Hash32{}, consensus.Hash32{}, 1000, s.constants.MinSubBlocksPerChallengeBlock)
	seedRing(s, genesis, 1000)

	bogus := chainedEOS(consensus.Hash32{0xff}, consensus.Hash32{0xff}, 1000, s.constants.MinSubBlocksPerChallengeBlock)
	peak := &types.SubBlockRecord{TotalIters: consensus.NewUint128(1000), Deficit: s.constants.MinSubBlocksPerChallengeBlock}

	outcome, err := s.NewFinishedSubSlot(context.Background(), bogus, SubBlockRecords{}, peak)
	require.NoError(t, err)
	require.Equal(t, Rejected, outcome)
	require.Len(t, s.ring.entries, 1)
}

func TestNewFinishedSubSlot_DefersUntilInfusionKnown(t *testing.T) {
	s := newTestStore(t)
	genesis := chainedEOS(consensus.Hash32{}, consensus.Hash32{}, 1000, s.constants.MinSubBlocksPerChallengeBlock)
	seedRing(s, genesis, 1000)

	second := chainedEOS(mustChallengeHash(t, genesis), mustRewardHash(t, genesis), 1000, s.constants.MinSubBlocksPerChallengeBlock)
	// Peak is already inside this slot (total_iters > last slot iters) but
	// hasn't reached the reward-chain challenge this bundle reports.
	peak := &types.SubBlockRecord{
		TotalIters:                 consensus.NewUint128(1500),
		Deficit:                    s.constants.MinSubBlocksPerChallengeBlock,
		RewardInfusionNewChallenge: consensus.Hash32{0x42},
	}

	outcome, err := s.NewFinishedSubSlot(context.Background(), second, SubBlockRecords{}, peak)
	require.NoError(t, err)
	require.Equal(t, Deferred, outcome)
	require.Len(t, s.ring.entries, 1)

	deferred, ok := s.futureEOS.Pop(second.RewardChain.EndOfSlotVDF.Challenge)
	require.True(t, ok)
	require.Len(t, deferred, 1)
}

func TestNewSignagePoint_RejectsIndexZero(t *testing.T) {
	s := newTestStore(t)
	genesis := chainedEOS(consensus.Hash32{}, consensus.Hash32{}, 1000, s.constants.MinSubBlocksPerChallengeBlock)
	seedRing(s, genesis, 1000)

	_, err := s.NewSignagePoint(context.Background(), mustChallengeHash(t, genesis), 0, &types.VDFInfo{}, &types.VDFProof{}, &types.VDFInfo{}, &types.VDFProof{})
	require.Error(t, err)
}

func TestNewSignagePoint_AddsAndGetByIndex(t *testing.T) {
	s := newTestStore(t)
	genesis := chainedEOS(consensus.Hash32{}, consensus.Hash32{}, 1000, s.constants.MinSubBlocksPerChallengeBlock)
	seedRing(s, genesis, 1000)

	challenge := mustChallengeHash(t, genesis)
	rcVDF := &types.VDFInfo{Challenge: consensus.Hash32{0x7}}
	outcome, err := s.NewSignagePoint(context.Background(), challenge, 3, &types.VDFInfo{}, &types.VDFProof{}, rcVDF, &types.VDFProof{})
	require.NoError(t, err)
	require.Equal(t, Accepted, outcome)

	sp, err := s.GetSignagePointByIndex(challenge, 3, consensus.Hash32{0x7})
	require.NoError(t, err)
	require.NotNil(t, sp)

	_, err = s.GetSignagePointByIndex(challenge, 3, consensus.Hash32{0x99})
	require.ErrorIs(t, err, ErrEndpointNotFound)

	sentinel, err := s.GetSignagePointByIndex(challenge, 0, consensus.Hash32{})
	require.NoError(t, err)
	require.NotNil(t, sentinel)
}

func TestGetSubSlot_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, _, _, err := s.GetSubSlot(consensus.Hash32{0x1})
	require.ErrorIs(t, err, ErrEndpointNotFound)
}
