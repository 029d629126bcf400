package forkchoice

import (
	"github.com/chia-network/gochia/chia/consensus"
	"github.com/chia-network/gochia/chia/types"
)

// AddDisconnectedBlock stores a fully infused block whose parent the chain
// does not yet reach.
func (s *Store) AddDisconnectedBlock(block *types.FullBlock) (consensus.Hash32, error) {
	headerHash, err := block.HeaderHash()
	if err != nil {
		return consensus.Hash32{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertWriteLocked()
	s.disconnected.Add(headerHash, block)
	return headerHash, nil
}

// GetDisconnectedBlockByPrev returns a disconnected block whose
// PrevHeaderHash matches prevHeaderHash, if any.
func (s *Store) GetDisconnectedBlockByPrev(prevHeaderHash consensus.Hash32) *types.FullBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := s.disconnected.ByPrevHash(prevHeaderHash)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// AddCandidateBlock stores an unfinished block under the quality string its
// plot proof produced.
func (s *Store) AddCandidateBlock(qualityString consensus.Hash32, height uint32, block *types.UnfinishedBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertWriteLocked()
	s.candidates.Add(qualityString, height, block)
}

// GetCandidateBlock returns the candidate stored under qualityString, if
// any.
func (s *Store) GetCandidateBlock(qualityString consensus.Hash32) (*types.UnfinishedBlock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.candidates.Get(qualityString)
}

// AddUnfinishedBlock indexes block under its partial reward chain hash,
// recording height so a later peak transition can prune it.
func (s *Store) AddUnfinishedBlock(height uint32, block *types.UnfinishedBlock) (consensus.Hash32, error) {
	hash, err := block.PartialRewardChainHash()
	if err != nil {
		return consensus.Hash32{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertWriteLocked()
	s.unfinished.Add(hash, height, block)
	return hash, nil
}

// GetUnfinishedBlock returns the unfinished block indexed under
// unfinishedRewardHash, if any.
func (s *Store) GetUnfinishedBlock(unfinishedRewardHash consensus.Hash32) (*types.UnfinishedBlock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unfinished.Get(unfinishedRewardHash)
}

// RemoveUnfinishedBlock drops the unfinished block indexed under
// partialRewardHash, e.g. once it has been infused into a full block.
func (s *Store) RemoveUnfinishedBlock(partialRewardHash consensus.Hash32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertWriteLocked()
	s.unfinished.Remove(partialRewardHash)
}

// SeenUnfinishedBlock reports whether tempHeaderHash has already been
// observed, recording it if not.
func (s *Store) SeenUnfinishedBlock(tempHeaderHash consensus.Hash32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertWriteLocked()
	return s.seenUnfinished.MarkSeen(tempHeaderHash)
}

// AddToFutureSignagePoint defers sp until the challenge it reports against
// (its reward chain VDF's challenge hash) is infused.
func (s *Store) AddToFutureSignagePoint(sp *types.SignagePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertWriteLocked()
	s.futureSP.Add(sp.RewardChainVDF.Challenge, sp)
}

// PopFutureSignagePoints returns and clears every signage point deferred
// under challenge.
func (s *Store) PopFutureSignagePoints(challenge consensus.Hash32) []*types.SignagePoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertWriteLocked()
	values, _ := s.futureSP.Pop(challenge)
	return values
}

// AddToFutureInfusionPoint defers an infusion-point VDF until its
// challenge is infused.
func (s *Store) AddToFutureInfusionPoint(challenge consensus.Hash32, vdfInfo *types.VDFInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertWriteLocked()
	s.futureIP.Add(challenge, vdfInfo)
}

// PopFutureInfusionPoints returns and clears every infusion-point VDF
// deferred under challenge.
func (s *Store) PopFutureInfusionPoints(challenge consensus.Hash32) []*types.VDFInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertWriteLocked()
	values, _ := s.futureIP.Pop(challenge)
	return values
}

// AddToFutureSubBlock defers a full block until the challenge its reward
// chain infusion point reports against is itself infused.
func (s *Store) AddToFutureSubBlock(challenge consensus.Hash32, block *types.FullBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertWriteLocked()
	s.futureSB.Add(challenge, block)
}

// PopFutureSubBlocks returns and clears every full block deferred under
// challenge.
func (s *Store) PopFutureSubBlocks(challenge consensus.Hash32) []*types.FullBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertWriteLocked()
	values, _ := s.futureSB.Pop(challenge)
	return values
}
