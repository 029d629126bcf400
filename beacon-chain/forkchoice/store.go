// Package forkchoice holds the Store: the single in-memory staging area a
// full node keeps between "I received a message" and "this message is
// part of the canonical chain." It tracks the finished-sub-slot ring, the
// signage points observed within it, and the unfinished/candidate/
// disconnected block tables, and knows how to replay deferred messages
// once the infusion they were waiting on finally lands (spec.md §4-§6).
package forkchoice

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"

	"github.com/chia-network/gochia/async/event"
	"github.com/chia-network/gochia/beacon-chain/cache"
	"github.com/chia-network/gochia/chia/consensus"
	"github.com/chia-network/gochia/chia/types"
	"github.com/chia-network/gochia/chia/vdf"
)

// SubBlockRecords is the chain's durable index of infused sub-blocks,
// keyed by header hash. The store never owns this table; it is handed one
// by whatever maintains the canonical chain.
type SubBlockRecords map[consensus.Hash32]*types.SubBlockRecord

// Store is the full-node staging area described in package forkchoice's
// doc comment. The zero value is not usable; build one with New. A single
// *Store is meant to be shared by the gossip, farmer, and timelord-facing
// goroutines of one full node, all serialized behind mu (spec.md §5,
// "Concurrency: one writer at a time").
type Store struct {
	mu sync.RWMutex

	constants *consensus.Constants
	verifier  vdf.Verifier
	log       logrus.FieldLogger

	ring slotRing

	unfinished     *cache.UnfinishedBlockTable
	candidates     *cache.CandidateBlockTable
	disconnected   *cache.DisconnectedBlockTable
	seenUnfinished *cache.SeenUnfinishedSet

	futureEOS *cache.DeferredCache[*types.EndOfSubSlotBundle]
	futureSP  *cache.DeferredCache[*types.SignagePoint]
	futureIP  *cache.DeferredCache[*types.VDFInfo]
	futureSB  *cache.DeferredCache[*types.FullBlock]

	// feed notifies subscribers (a farmer or timelord client, or tests)
	// whenever a message's Outcome is decided, the way the teacher's
	// blockchain service exposes a CanonicalBlockFeed.
	feed event.Feed
}

// Event is published on the Store's feed whenever NewFinishedSubSlot,
// NewSignagePoint, or NewPeak resolves a message.
type Event struct {
	Op      string
	Outcome Outcome
}

// New builds an empty Store for the given consensus constants and VDF
// verifier.
func New(constants *consensus.Constants, verifier vdf.Verifier, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		constants:      constants,
		verifier:       verifier,
		log:            log,
		unfinished:     cache.NewUnfinishedBlockTable(),
		candidates:     cache.NewCandidateBlockTable(),
		disconnected:   cache.NewDisconnectedBlockTable(),
		seenUnfinished: cache.NewSeenUnfinishedSet(),
		futureEOS:      cache.NewDeferredCache[*types.EndOfSubSlotBundle](),
		futureSP:       cache.NewDeferredCache[*types.SignagePoint](),
		futureIP:       cache.NewDeferredCache[*types.VDFInfo](),
		futureSB:       cache.NewDeferredCache[*types.FullBlock](),
	}
}

// Subscribe registers ch to receive every Event the store publishes.
func (s *Store) Subscribe(ch chan<- Event) event.Subscription {
	return s.feed.Subscribe(ch)
}

func (s *Store) publish(ctx context.Context, op string, outcome Outcome) {
	s.log.WithFields(logrus.Fields{"op": op, "outcome": outcome.String()}).Debug("forkchoice: resolved message")
	s.feed.Send(Event{Op: op, Outcome: outcome})
}

// ReportMetrics publishes the current size of every table the store
// holds. It is meant to be called periodically (see async.RunEvery in the
// owning Service), not on every mutation, so a burst of gossip doesn't
// turn into a burst of prometheus writes.
func (s *Store) ReportMetrics() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cache.ReportUnfinishedBlocks(s.unfinished)
	cache.ReportCandidateBlocks(s.candidates)
	cache.ReportDisconnectedBlocks(s.disconnected)
	cache.ReportFinishedSubSlots(len(s.ring.entries))
	cache.ReportDeferred("eos", s.futureEOS)
	cache.ReportDeferred("sp", s.futureSP)
	cache.ReportDeferred("ip", s.futureIP)
	cache.ReportDeferred("block", s.futureSB)
}

// NewFinishedSubSlot validates eos against the tail of the ring and, if it
// chains correctly, appends it. It returns Deferred when the peak's
// reward-chain infusion hash isn't known yet, and Rejected when the bundle
// fails VDF verification or does not chain to the current tail
// (original_source full_node_store.py's new_finished_sub_slot).
func (s *Store) NewFinishedSubSlot(ctx context.Context, eos *types.EndOfSubSlotBundle, subBlocks SubBlockRecords, peak *types.SubBlockRecord) (Outcome, error) {
	ctx, span := trace.StartSpan(ctx, "forkchoice.Store.NewFinishedSubSlot")
	defer span.End()
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome, err := s.newFinishedSubSlotLocked(eos, subBlocks, peak)
	s.publish(ctx, "new_finished_sub_slot", outcome)
	return outcome, err
}

func (s *Store) newFinishedSubSlotLocked(eos *types.EndOfSubSlotBundle, subBlocks SubBlockRecords, peak *types.SubBlockRecord) (Outcome, error) {
	s.assertWriteLocked()
	lastEntry, ok := s.ring.last()
	if !ok {
		return Rejected, nil
	}

	lastHash, err := lastEntry.eos.ChallengeChainHash()
	if err != nil {
		return Rejected, errors.Wrap(err, "hash last slot's challenge chain")
	}
	if eos.ChallengeChain.ChallengeChainEndOfSlotVDF.Challenge != lastHash {
		return Rejected, nil
	}

	ok, err = s.verifier.Verify(&eos.ChallengeChain.ChallengeChainEndOfSlotVDF, &eos.ChallengeChainVDFProof)
	if err != nil {
		return Rejected, errors.Wrap(err, "verify challenge chain slot proof")
	}
	if !ok {
		return Rejected, nil
	}
	ok, err = s.verifier.Verify(&eos.RewardChain.EndOfSlotVDF, &eos.RewardChainVDFProof)
	if err != nil {
		return Rejected, errors.Wrap(err, "verify reward chain slot proof")
	}
	if !ok {
		return Rejected, nil
	}
	if eos.InfusedChallengeChain != nil {
		ok, err = s.verifier.Verify(&eos.InfusedChallengeChain.InfusedChallengeChainEndOfSlotVDF, eos.InfusedChallengeChainVDFProof)
		if err != nil {
			return Rejected, errors.Wrap(err, "verify infused challenge chain slot proof")
		}
		if !ok {
			return Rejected, nil
		}
	}

	totalIters := new(consensus.Uint128).Add(lastEntry.totalIters, consensus.NewUint128(eos.ChallengeChain.ChallengeChainEndOfSlotVDF.NumberOfIterations))

	if peak.TotalIters.Cmp(lastEntry.totalIters) > 0 {
		// The peak is in the slot we're extending: the new bundle's reward
		// chain must chain from the peak's own infusion.
		rcChallenge := eos.RewardChain.EndOfSlotVDF.Challenge
		if peak.RewardInfusionNewChallenge != rcChallenge {
			s.futureEOS.Add(rcChallenge, eos)
			return Deferred, nil
		}
		expect := new(consensus.Uint128).Add(peak.TotalIters, consensus.NewUint128(eos.RewardChain.EndOfSlotVDF.NumberOfIterations))
		if expect.Cmp(totalIters) != 0 {
			return Rejected, nil
		}

		if peak.Deficit < s.constants.MinSubBlocksPerChallengeBlock {
			icc, err := challengeSlotStartHash(peak, subBlocks)
			if err != nil {
				return Rejected, err
			}
			if eos.InfusedChallengeChain == nil || eos.InfusedChallengeChain.InfusedChallengeChainEndOfSlotVDF.Challenge != icc {
				return Rejected, nil
			}
		}
	} else {
		// Empty slot past the peak: chains directly from the prior slot.
		lastRCHash, err := lastEntry.eos.RewardChainHash()
		if err != nil {
			return Rejected, errors.Wrap(err, "hash last slot's reward chain")
		}
		if eos.RewardChain.EndOfSlotVDF.Challenge != lastRCHash {
			return Rejected, nil
		}
		if lastEntry.eos.RewardChain.Deficit < s.constants.MinSubBlocksPerChallengeBlock {
			lastICCHash, err := lastEntry.eos.InfusedChallengeChain.HashTreeRoot()
			if err != nil {
				return Rejected, errors.Wrap(err, "hash last slot's infused challenge chain")
			}
			if eos.InfusedChallengeChain == nil || eos.InfusedChallengeChain.InfusedChallengeChainEndOfSlotVDF.Challenge != consensus.Hash32(lastICCHash) {
				return Rejected, nil
			}
		}
	}

	s.ring.append(newSlotEntry(eos, totalIters, s.constants.NumCheckpointsPerSlot))
	cache.ReportFinishedSubSlots(len(s.ring.entries))
	return Accepted, nil
}

// challengeSlotStartHash walks prev-hash links from curr until it finds a
// sub-block that starts a sub-slot, mirroring new_finished_sub_slot's
// `while not curr.first_in_sub_slot and not curr.is_challenge_sub_block`
// loop, and returns the challenge hash the next infused challenge chain
// sub-slot must chain from.
func challengeSlotStartHash(curr *types.SubBlockRecord, subBlocks SubBlockRecords) (consensus.Hash32, error) {
	for !curr.FirstInSubSlot && curr.Deficit != 0 {
		next, ok := subBlocks[curr.PrevHash]
		if !ok {
			return consensus.Hash32{}, fmt.Errorf("forkchoice: missing sub-block record for %x", curr.PrevHash)
		}
		curr = next
	}
	if curr.Deficit == 0 {
		return curr.ChallengeBlockInfoHash, nil
	}
	if len(curr.FinishedInfusedChallengeSlotHashes) == 0 {
		return consensus.Hash32{}, fmt.Errorf("forkchoice: sub-block %x has no finished infused challenge slots", curr.HeaderHash)
	}
	return curr.FinishedInfusedChallengeSlotHashes[len(curr.FinishedInfusedChallengeSlotHashes)-1], nil
}

// NewSignagePoint records a signage point's VDF pair at index within the
// sub-slot identified by challengeHash. index must be in (0, NumCheckpointsPerSlot).
func (s *Store) NewSignagePoint(ctx context.Context, challengeHash consensus.Hash32, index uint8, ccVDF *types.VDFInfo, ccProof *types.VDFProof, rcVDF *types.VDFInfo, rcProof *types.VDFProof) (Outcome, error) {
	_, span := trace.StartSpan(ctx, "forkchoice.Store.NewSignagePoint")
	defer span.End()
	if index == 0 || index >= s.constants.NumCheckpointsPerSlot {
		return Rejected, fmt.Errorf("forkchoice: signage point index %d out of range", index)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertWriteLocked()

	idx, err := s.ring.indexByChallengeHash(challengeHash)
	if err != nil {
		return Rejected, err
	}
	if idx == -1 {
		s.publish(ctx, "new_signage_point", Rejected)
		return Rejected, nil
	}
	sp := &types.SignagePoint{
		ChallengeChainVDF:      *ccVDF,
		ChallengeChainVDFProof: *ccProof,
		RewardChainVDF:         *rcVDF,
		RewardChainVDFProof:    *rcProof,
	}
	entry := s.ring.entries[idx]
	entry.checkpoints[index] = append(entry.checkpoints[index], sp)
	entry.seen.SetBitAt(uint64(index), true)
	s.publish(ctx, "new_signage_point", Accepted)
	return Accepted, nil
}

// GetSubSlot returns the finished sub-slot whose challenge chain segment
// hashes to challengeHash, its ring index, and the cumulative iteration
// count at its end.
func (s *Store) GetSubSlot(challengeHash consensus.Hash32) (*types.EndOfSubSlotBundle, int, *consensus.Uint128, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, err := s.ring.indexByChallengeHash(challengeHash)
	if err != nil {
		return nil, 0, nil, err
	}
	if idx == -1 {
		return nil, 0, nil, ErrEndpointNotFound
	}
	entry := s.ring.entries[idx]
	return entry.eos, idx, entry.totalIters, nil
}

// GetSignagePoint finds the signage point whose challenge chain VDF
// hashes to ccSignagePoint, searching every finished sub-slot's
// checkpoints. A hash matching a sub-slot's own challenge chain segment
// resolves to the implicit checkpoint-0 sentinel.
func (s *Store) GetSignagePoint(ccSignagePoint consensus.Hash32) (*types.SignagePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.ring.entries {
		h, err := entry.eos.ChallengeChainHash()
		if err != nil {
			return nil, err
		}
		if h == ccSignagePoint {
			return &types.SignagePoint{}, nil
		}
		for _, sps := range entry.checkpoints {
			for _, sp := range sps {
				root, err := sp.ChallengeChainVDF.HashTreeRoot()
				if err != nil {
					return nil, err
				}
				if consensus.Hash32(root) == ccSignagePoint {
					return sp, nil
				}
			}
		}
	}
	return nil, ErrEndpointNotFound
}

// GetSignagePointByIndex finds the signage point at the given checkpoint
// index within the sub-slot identified by challengeHash, whose reward
// chain VDF challenge matches lastRCInfusion (the most recent infusion a
// caller has observed). Index 0 always resolves to the empty sentinel.
func (s *Store) GetSignagePointByIndex(challengeHash consensus.Hash32, index uint8, lastRCInfusion consensus.Hash32) (*types.SignagePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, err := s.ring.indexByChallengeHash(challengeHash)
	if err != nil {
		return nil, err
	}
	if idx == -1 {
		return nil, ErrEndpointNotFound
	}
	if index == 0 {
		return &types.SignagePoint{}, nil
	}
	entry := s.ring.entries[idx]
	sps, ok := entry.checkpoints[index]
	if !ok {
		return nil, ErrEndpointNotFound
	}
	for _, sp := range sps {
		if sp.RewardChainVDF.Challenge == lastRCInfusion {
			return sp, nil
		}
	}
	return nil, ErrEndpointNotFound
}
