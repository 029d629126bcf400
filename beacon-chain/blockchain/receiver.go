package blockchain

import (
	"context"
	"fmt"

	"go.opencensus.io/trace"

	"github.com/chia-network/gochia/beacon-chain/forkchoice"
	"github.com/chia-network/gochia/chia/consensus"
	"github.com/chia-network/gochia/chia/types"
)

// MessageRejectedErr represents a message the store declined to stage,
// because it failed validation rather than because of an unexpected
// internal failure.
type MessageRejectedErr struct {
	Op string
}

func (e *MessageRejectedErr) Error() string {
	return fmt.Sprintf("blockchain: %s rejected", e.Op)
}

// ReceiveEndOfSubSlot is the entry point for an end-of-sub-slot bundle
// arriving from gossip or a timelord client. It performs the following:
//  1. Stage the bundle against the store's ring.
//  2. If accepted, nothing further is required of the caller.
//  3. If deferred, the bundle is held until the matching peak arrives;
//     ReceivePeak will replay it automatically.
func (s *Service) ReceiveEndOfSubSlot(ctx context.Context, eos *types.EndOfSubSlotBundle, peak *types.SubBlockRecord) (forkchoice.Outcome, error) {
	ctx, span := trace.StartSpan(ctx, "blockchain.Service.ReceiveEndOfSubSlot")
	defer span.End()

	outcome, err := s.store.NewFinishedSubSlot(ctx, eos, s.subBlocks, peak)
	if err != nil {
		return outcome, fmt.Errorf("staging end of sub-slot: %w", err)
	}
	if outcome == forkchoice.Rejected {
		log.WithField("op", "new_finished_sub_slot").Debug("rejected end of sub-slot bundle")
	}
	return outcome, nil
}

// ReceiveSignagePoint stages a signage point's VDF pair. index is as
// described by forkchoice.Store.NewSignagePoint.
func (s *Service) ReceiveSignagePoint(ctx context.Context, challengeHash consensus.Hash32, index uint8, ccVDF *types.VDFInfo, ccProof *types.VDFProof, rcVDF *types.VDFInfo, rcProof *types.VDFProof) (forkchoice.Outcome, error) {
	ctx, span := trace.StartSpan(ctx, "blockchain.Service.ReceiveSignagePoint")
	defer span.End()

	outcome, err := s.store.NewSignagePoint(ctx, challengeHash, index, ccVDF, ccProof, rcVDF, rcProof)
	if err != nil {
		return outcome, fmt.Errorf("staging signage point: %w", err)
	}
	return outcome, nil
}

// ReceivePeak transitions the store to a new peak and replays any deferred
// end-of-sub-slot bundle that the new peak unblocks, the way a block
// processing pipeline's final step reconciles staged data against the
// confirmed chain.
func (s *Service) ReceivePeak(ctx context.Context, peak *types.SubBlockRecord, peakSubSlot *types.EndOfSubSlotBundle, totalIters *consensus.Uint128, prevSubSlot *types.EndOfSubSlotBundle, prevSubSlotTotalIters *consensus.Uint128, reorg bool) (*types.EndOfSubSlotBundle, error) {
	ctx, span := trace.StartSpan(ctx, "blockchain.Service.ReceivePeak")
	defer span.End()

	s.RegisterSubBlock(peak)
	replayed, err := s.store.NewPeak(ctx, peak, peakSubSlot, totalIters, prevSubSlot, prevSubSlotTotalIters, reorg, s.subBlocks)
	if err != nil {
		return nil, fmt.Errorf("transitioning to new peak: %w", err)
	}
	return replayed, nil
}

// ReceiveUnfinishedBlock stages an unfinished block under both its quality
// string (for farmer dedup) and its partial reward chain hash (for
// infusion lookup), rejecting duplicates already seen under
// tempHeaderHash.
func (s *Service) ReceiveUnfinishedBlock(ctx context.Context, tempHeaderHash consensus.Hash32, qualityString consensus.Hash32, height uint32, block *types.UnfinishedBlock) (forkchoice.Outcome, error) {
	_, span := trace.StartSpan(ctx, "blockchain.Service.ReceiveUnfinishedBlock")
	defer span.End()

	if s.store.SeenUnfinishedBlock(tempHeaderHash) {
		return forkchoice.Rejected, nil
	}
	s.store.AddCandidateBlock(qualityString, height, block)
	if _, err := s.store.AddUnfinishedBlock(height, block); err != nil {
		return forkchoice.Rejected, fmt.Errorf("staging unfinished block: %w", err)
	}
	return forkchoice.Accepted, nil
}

// ReceiveFullBlock stages a fully infused block. If its parent is not yet
// reachable from the chain index, it is held in the disconnected-block
// table rather than rejected outright.
func (s *Service) ReceiveFullBlock(ctx context.Context, block *types.FullBlock) (forkchoice.Outcome, error) {
	_, span := trace.StartSpan(ctx, "blockchain.Service.ReceiveFullBlock")
	defer span.End()

	if _, ok := s.subBlocks[block.Unfinished.PrevHeaderHash]; !ok {
		if _, err := s.store.AddDisconnectedBlock(block); err != nil {
			return forkchoice.Rejected, fmt.Errorf("staging disconnected block: %w", err)
		}
		return forkchoice.Deferred, nil
	}
	return forkchoice.Accepted, nil
}
