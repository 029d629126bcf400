package cache

import (
	"github.com/chia-network/gochia/chia/consensus"
	"github.com/chia-network/gochia/chia/types"
)

// UnfinishedBlockTable indexes unfinished blocks by the hash of their
// partial reward chain, the same key the farmer signed against when it
// submitted the block (spec.md §4.4, "candidate and unfinished blocks").
type UnfinishedBlockTable struct {
	byPartialRewardHash map[consensus.Hash32]*types.UnfinishedBlock
	heightOf            map[consensus.Hash32]uint32
}

// NewUnfinishedBlockTable builds an empty UnfinishedBlockTable.
func NewUnfinishedBlockTable() *UnfinishedBlockTable {
	return &UnfinishedBlockTable{
		byPartialRewardHash: make(map[consensus.Hash32]*types.UnfinishedBlock),
		heightOf:            make(map[consensus.Hash32]uint32),
	}
}

// Add indexes block under its partial reward chain hash, recording height so
// ClearBelow can evict it once the chain has moved well past it.
func (t *UnfinishedBlockTable) Add(hash consensus.Hash32, height uint32, block *types.UnfinishedBlock) {
	t.byPartialRewardHash[hash] = block
	t.heightOf[hash] = height
}

// Get returns the unfinished block indexed under hash, if any.
func (t *UnfinishedBlockTable) Get(hash consensus.Hash32) (*types.UnfinishedBlock, bool) {
	b, ok := t.byPartialRewardHash[hash]
	return b, ok
}

// Remove drops the unfinished block indexed under hash.
func (t *UnfinishedBlockTable) Remove(hash consensus.Hash32) {
	delete(t.byPartialRewardHash, hash)
	delete(t.heightOf, hash)
}

// ClearBelow evicts every unfinished block recorded at a height below
// height. A sub-block's worth of unfinished candidates goes stale the
// moment a peak passes them by (spec.md §4.4, original_source
// full_node_store.py's clear_unfinished_blocks_below).
func (t *UnfinishedBlockTable) ClearBelow(height uint32) {
	for k, h := range t.heightOf {
		if h < height {
			delete(t.byPartialRewardHash, k)
			delete(t.heightOf, k)
		}
	}
}

// Len returns the number of unfinished blocks currently indexed.
func (t *UnfinishedBlockTable) Len() int {
	return len(t.byPartialRewardHash)
}

// CandidateBlockTable indexes unfinished blocks by the quality string their
// plot proof produced, before a reward chain segment even exists for them
// (spec.md §4.4, "candidate blocks precede unfinished blocks").
type CandidateBlockTable struct {
	byQualityString map[consensus.Hash32]*types.UnfinishedBlock
	heightOf        map[consensus.Hash32]uint32
}

// NewCandidateBlockTable builds an empty CandidateBlockTable.
func NewCandidateBlockTable() *CandidateBlockTable {
	return &CandidateBlockTable{
		byQualityString: make(map[consensus.Hash32]*types.UnfinishedBlock),
		heightOf:        make(map[consensus.Hash32]uint32),
	}
}

// Add indexes block under qualityString, recording height so ClearBelow
// can evict it once the chain has moved well past it.
func (t *CandidateBlockTable) Add(qualityString consensus.Hash32, height uint32, block *types.UnfinishedBlock) {
	t.byQualityString[qualityString] = block
	t.heightOf[qualityString] = height
}

// Get returns the candidate indexed under qualityString, if any.
func (t *CandidateBlockTable) Get(qualityString consensus.Hash32) (*types.UnfinishedBlock, bool) {
	b, ok := t.byQualityString[qualityString]
	return b, ok
}

// ClearBelow evicts every candidate recorded at a height below height.
func (t *CandidateBlockTable) ClearBelow(height uint32) {
	for k, h := range t.heightOf {
		if h < height {
			delete(t.byQualityString, k)
			delete(t.heightOf, k)
		}
	}
}

// Len returns the number of candidate blocks currently indexed.
func (t *CandidateBlockTable) Len() int {
	return len(t.byQualityString)
}

// DisconnectedBlockTable holds fully infused blocks whose previous-header
// hash is not yet known to the chain, keyed by the block's own header
// hash, so a later peak transition can reattach them (spec.md §4.4,
// "disconnected blocks").
type DisconnectedBlockTable struct {
	byHeaderHash map[consensus.Hash32]*types.FullBlock
}

// NewDisconnectedBlockTable builds an empty DisconnectedBlockTable.
func NewDisconnectedBlockTable() *DisconnectedBlockTable {
	return &DisconnectedBlockTable{byHeaderHash: make(map[consensus.Hash32]*types.FullBlock)}
}

// Add indexes block under headerHash.
func (t *DisconnectedBlockTable) Add(headerHash consensus.Hash32, block *types.FullBlock) {
	t.byHeaderHash[headerHash] = block
}

// Get returns the disconnected block indexed under headerHash, if any.
func (t *DisconnectedBlockTable) Get(headerHash consensus.Hash32) (*types.FullBlock, bool) {
	b, ok := t.byHeaderHash[headerHash]
	return b, ok
}

// ByPrevHash returns every disconnected block whose PrevHeaderHash matches
// prevHash, the lookup a peak transition uses to walk disconnected
// children back onto the chain.
func (t *DisconnectedBlockTable) ByPrevHash(prevHash consensus.Hash32) []*types.FullBlock {
	var out []*types.FullBlock
	for _, b := range t.byHeaderHash {
		if b.Unfinished.PrevHeaderHash == prevHash {
			out = append(out, b)
		}
	}
	return out
}

// ClearBelow evicts every disconnected block at a height below height.
func (t *DisconnectedBlockTable) ClearBelow(height uint32) {
	for k, b := range t.byHeaderHash {
		if b.Height() < height {
			delete(t.byHeaderHash, k)
		}
	}
}

// Len returns the number of disconnected blocks currently indexed.
func (t *DisconnectedBlockTable) Len() int {
	return len(t.byHeaderHash)
}

// SeenUnfinishedSet deduplicates unfinished-block announcements by a
// caller-supplied temporary header hash, so the same candidate relayed by
// several peers is only processed once (spec.md §4.4, "seen-unfinished
// dedup").
type SeenUnfinishedSet struct {
	seen map[consensus.Hash32]struct{}
}

// NewSeenUnfinishedSet builds an empty SeenUnfinishedSet.
func NewSeenUnfinishedSet() *SeenUnfinishedSet {
	return &SeenUnfinishedSet{seen: make(map[consensus.Hash32]struct{})}
}

// MarkSeen records tempHeaderHash as seen and reports whether it had
// already been recorded.
func (s *SeenUnfinishedSet) MarkSeen(tempHeaderHash consensus.Hash32) (alreadySeen bool) {
	if _, ok := s.seen[tempHeaderHash]; ok {
		return true
	}
	s.seen[tempHeaderHash] = struct{}{}
	return false
}

// Clear empties the set. Called on every peak transition, since a
// temporary header hash only needs to dedupe announcements within a
// single sub-slot's worth of gossip (spec.md §4.4).
func (s *SeenUnfinishedSet) Clear() {
	s.seen = make(map[consensus.Hash32]struct{})
}
