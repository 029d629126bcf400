package types

import (
	ssz "github.com/ferranbt/fastssz"

	"github.com/chia-network/gochia/chia/consensus"
)

// SubBlockRecord is the durable summary of an infused sub-block that the
// store keeps once a peak transition confirms it: everything later lookups
// need without retaining the full block body. The original store accessed
// these fields by position in a tuple (original_source's
// `sub_block.data[4]` for height); here every caller goes through Height(),
// never a positional index, because the tuple shape silently changed more
// than once in the original history (spec.md §9, open question 3).
type SubBlockRecord struct {
	HeaderHash       consensus.Hash32
	PrevHash         consensus.Hash32
	height           uint32
	Weight           *consensus.Uint128
	TotalIters       *consensus.Uint128
	SignagePointIndex uint8
	Deficit          uint8
	Overflow         bool
	RewardInfusionNewChallenge consensus.Hash32

	// FirstInSubSlot marks the first sub-block infused after a sub-slot
	// boundary; NewPeak and GetFinishedSubSlots walk PrevHash chains
	// looking for this to find a sub-slot's anchoring sub-block.
	FirstInSubSlot bool

	// ChallengeBlockInfoHash is set when this sub-block is a challenge
	// block (Deficit == 0); it seeds the next infused challenge chain
	// sub-slot.
	ChallengeBlockInfoHash consensus.Hash32

	// FinishedChallengeSlotHashes and FinishedInfusedChallengeSlotHashes
	// record, in order, the challenge-chain and infused-challenge-chain
	// hashes of every sub-slot finished at or before this sub-block. Only
	// populated on FirstInSubSlot records.
	FinishedChallengeSlotHashes        []consensus.Hash32
	FinishedInfusedChallengeSlotHashes []consensus.Hash32

	// IPS is the farmer's plot filter iterations-per-second estimate at
	// infusion time, and RequiredIters the iterations the winning proof
	// demanded; together they feed consensus.CalculateSubSlotIters and
	// consensus.CalculateIPIters.
	IPS           uint64
	RequiredIters uint64
}

// NewSubBlockRecord builds a SubBlockRecord, keeping height unexported so
// every reader is forced through Height() rather than a struct literal
// field index.
func NewSubBlockRecord(headerHash, prevHash consensus.Hash32, height uint32, weight, totalIters *consensus.Uint128, spIndex, deficit uint8, overflow bool, rewardChallenge consensus.Hash32) *SubBlockRecord {
	return &SubBlockRecord{
		HeaderHash:                 headerHash,
		PrevHash:                   prevHash,
		height:                     height,
		Weight:                     weight,
		TotalIters:                 totalIters,
		SignagePointIndex:          spIndex,
		Deficit:                    deficit,
		Overflow:                   overflow,
		RewardInfusionNewChallenge: rewardChallenge,
	}
}

// Height returns the sub-block's height. Always use this accessor rather
// than reaching into the struct by field position.
func (r *SubBlockRecord) Height() uint32 {
	return r.height
}

// IsChallengeBlock reports whether this sub-block resets the challenge
// chain's deficit: true once Deficit has counted down to zero. c is not
// consulted.
func (r *SubBlockRecord) IsChallengeBlock(c *consensus.Constants) bool {
	return r.Deficit == 0
}

// UnfinishedBlock is a candidate block body that has not yet been infused:
// it carries a signage point reference and a partial reward chain, but no
// infusion-point VDF yet. The store keys these by the partial reward chain
// hash the farmer signed against (spec.md §2, "unfinished key").
type UnfinishedBlock struct {
	PrevHeaderHash          consensus.Hash32
	SignagePointIndex       uint8
	RewardChainSubBlock     RewardChainSubSlot
	Foliage                 []byte
	TransactionsGenerator   []byte
}

// PartialRewardChainHash is the identity the store indexes unfinished
// blocks by.
func (u *UnfinishedBlock) PartialRewardChainHash() (consensus.Hash32, error) {
	root, err := u.RewardChainSubBlock.HashTreeRoot()
	return consensus.Hash32(root), err
}

// FullBlock is a fully infused block: an unfinished block plus the
// infusion-point VDFs and proofs that confirm the farmer's plot won the
// slot. It is the unit that drives NewPeak.
type FullBlock struct {
	Unfinished               UnfinishedBlock
	ChallengeChainIPVDF      VDFInfo
	ChallengeChainIPVDFProof VDFProof
	RewardChainIPVDF         VDFInfo
	RewardChainIPVDFProof    VDFProof
	InfusedChallengeChainIPVDF      *VDFInfo
	InfusedChallengeChainIPVDFProof *VDFProof
	height                   uint32
}

// Height returns the block's height, resolved the same way
// SubBlockRecord.Height is: through an accessor, never a tuple index.
func (b *FullBlock) Height() uint32 {
	return b.height
}

// SetHeight assigns the block's height once it is known from its parent's
// SubBlockRecord. It exists so a FullBlock can be constructed before its
// position in the chain is confirmed (e.g. by a candidate still awaiting
// its parent's infusion), then stamped once that parent resolves.
func (b *FullBlock) SetHeight(h uint32) {
	b.height = h
}

// HeaderHash is the identity the store and forkchoice key full blocks by.
func (b *FullBlock) HeaderHash() (consensus.Hash32, error) {
	root, err := ssz.HashWithDefaultHasher(headerHashable{b})
	return consensus.Hash32(root), err
}

type headerHashable struct {
	b *FullBlock
}

func (h headerHashable) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(h)
}

func (h headerHashable) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	if err := h.b.ChallengeChainIPVDF.HashTreeRootWith(hh); err != nil {
		return err
	}
	if err := h.b.RewardChainIPVDF.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.PutUint64(uint64(h.b.height))
	hh.Merkleize(indx)
	return nil
}
