package forkchoice

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/chia-network/gochia/beacon-chain/cache"
	"github.com/chia-network/gochia/chia/consensus"
	"github.com/chia-network/gochia/chia/types"
)

// NewPeak transitions the store to a new canonical peak. When reorg is
// false, it trims the ring down to what is still reachable from the new
// peak (dropping signage points the infusion has made unreachable);
// otherwise it discards the ring entirely and reseeds it from
// prevSubSlot/peakSubSlot. Either way, it finally replays any end-of-slot
// bundles that were deferred waiting on peak's infusion, returning the
// first one that successfully chains (original_source full_node_store.py's
// new_peak).
func (s *Store) NewPeak(ctx context.Context, peak *types.SubBlockRecord, peakSubSlot *types.EndOfSubSlotBundle, totalIters *consensus.Uint128, prevSubSlot *types.EndOfSubSlotBundle, prevSubSlotTotalIters *consensus.Uint128, reorg bool, subBlocks SubBlockRecords) (*types.EndOfSubSlotBundle, error) {
	ctx, span := trace.StartSpan(ctx, "forkchoice.Store.NewPeak")
	defer span.End()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertWriteLocked()

	if !reorg {
		if err := s.trimRingToPeak(peak, peakSubSlot, prevSubSlot); err != nil {
			return nil, errors.Wrap(err, "trim ring to peak")
		}
	} else {
		s.ring.clear()
		if prevSubSlot != nil {
			s.ring.append(newSlotEntry(prevSubSlot, prevSubSlotTotalIters, s.constants.NumCheckpointsPerSlot))
		}
		s.ring.append(newSlotEntry(peakSubSlot, totalIters, s.constants.NumCheckpointsPerSlot))
	}

	s.unfinished.ClearBelow(peak.Height())
	s.candidates.ClearBelow(peak.Height())
	s.disconnected.ClearBelow(peak.Height())
	s.seenUnfinished.Clear()
	cache.ReportFinishedSubSlots(len(s.ring.entries))

	deferred, ok := s.futureEOS.Pop(peak.RewardInfusionNewChallenge)
	if !ok {
		s.publish(ctx, "new_peak", Accepted)
		return nil, nil
	}
	for _, eos := range deferred {
		outcome, err := s.newFinishedSubSlotLocked(eos, subBlocks, peak)
		if err != nil {
			return nil, err
		}
		if outcome == Accepted {
			s.publish(ctx, "new_peak", Accepted)
			return eos, nil
		}
	}
	s.publish(ctx, "new_peak", Accepted)
	return nil, nil
}

// trimRingToPeak implements the non-reorg half of new_peak: it keeps the
// previous sub-slot verbatim (needed for overflow sub-blocks whose signage
// point lands in it), and truncates peakSubSlot's checkpoints to the ones
// up to and including the checkpoint that holds the peak's infusion point
// (indices below ipIters/checkpointSize + 1), since everything after it no
// longer describes reachable state.
func (s *Store) trimRingToPeak(peak *types.SubBlockRecord, peakSubSlot *types.EndOfSubSlotBundle, prevSubSlot *types.EndOfSubSlotBundle) error {
	s.assertWriteLocked()
	subSlotIters := consensus.CalculateSubSlotIters(s.constants, peak.IPS)
	checkpointSize := subSlotIters / uint64(s.constants.NumCheckpointsPerSlot)
	if checkpointSize == 0 {
		checkpointSize = 1
	}
	ipIters := consensus.CalculateIPIters(s.constants, subSlotIters, peak.RequiredIters)
	spsToKeep := uint8(ipIters/checkpointSize) + 1

	var kept slotRing
	for _, entry := range s.ring.entries {
		if prevSubSlot != nil && entry.eos == prevSubSlot {
			kept.append(entry)
		}
		if entry.eos == peakSubSlot {
			trimmed := newSlotEntry(entry.eos, entry.totalIters, s.constants.NumCheckpointsPerSlot)
			for index, sps := range entry.checkpoints {
				if index < spsToKeep {
					trimmed.checkpoints[index] = sps
				}
			}
			kept.append(trimmed)
		}
	}
	s.ring = kept
	return nil
}

// GetFinishedSubSlots returns every sub-slot finished strictly after
// prevSB's own sub-slot and up to (and, if extraSubSlot, one past) the
// sub-slot identified by posChallengeHash — the set a block template must
// attach when it is built on top of prevSB (original_source
// full_node_store.py's get_finished_sub_slots).
func (s *Store) GetFinishedSubSlots(prevSB *types.SubBlockRecord, subBlockRecords SubBlockRecords, posChallengeHash consensus.Hash32, extraSubSlot bool) ([]*types.EndOfSubSlotBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	finalSubSlotInChain := s.constants.FirstCCChallenge
	if prevSB != nil {
		curr := prevSB
		for !curr.FirstInSubSlot {
			next, ok := subBlockRecords[curr.PrevHash]
			if !ok {
				return nil, errors.Errorf("forkchoice: missing sub-block record for %x", curr.PrevHash)
			}
			curr = next
		}
		if len(curr.FinishedChallengeSlotHashes) == 0 {
			return nil, errors.Errorf("forkchoice: sub-block %x has no finished challenge slots", curr.HeaderHash)
		}
		finalSubSlotInChain = curr.FinishedChallengeSlotHashes[len(curr.FinishedChallengeSlotHashes)-1]
	}

	posIndex, finalIndex := -1, -1
	for index, entry := range s.ring.entries {
		h, err := entry.eos.ChallengeChainHash()
		if err != nil {
			return nil, err
		}
		if h == posChallengeHash {
			posIndex = index
		}
		if h == finalSubSlotInChain {
			finalIndex = index
		}
	}
	if posIndex == -1 || finalIndex == -1 {
		return nil, errors.Errorf("forkchoice: did not find challenge hash or peak: pos=%d final=%d", posIndex, finalIndex)
	}

	newFinalIndex := posIndex
	if extraSubSlot {
		newFinalIndex = posIndex + 1
	}

	var out []*types.EndOfSubSlotBundle
	for i := finalIndex + 1; i <= newFinalIndex && i < len(s.ring.entries); i++ {
		out = append(out, s.ring.entries[i].eos)
	}
	return out, nil
}
