// Package blockchain wires the forkchoice staging store to the rest of a
// full node: it is the seam gossip, farmer, and timelord clients call into
// to hand the node new end-of-sub-slot bundles, signage points, and
// blocks, and the seam they subscribe to for the outcomes.
package blockchain

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chia-network/gochia/async"
	"github.com/chia-network/gochia/async/event"
	"github.com/chia-network/gochia/beacon-chain/forkchoice"
	"github.com/chia-network/gochia/chia/consensus"
	"github.com/chia-network/gochia/chia/types"
	"github.com/chia-network/gochia/chia/vdf"
)

// metricsReportInterval is how often Start schedules Store.ReportMetrics.
const metricsReportInterval = 15 * time.Second

var log = logrus.WithField("prefix", "blockchain")

// ChainFeeds is implemented by a Service, exposing its event feed to
// callers that only need to observe outcomes, not submit them.
type ChainFeeds interface {
	Subscribe(ch chan<- forkchoice.Event) event.Subscription
}

// Service is the full node's receiving end: a forkchoice.Store plus the
// chain-of-records map NewPeak and GetFinishedSubSlots need to walk
// prev-hash links.
type Service struct {
	ctx    context.Context
	cancel context.CancelFunc

	store      *forkchoice.Store
	subBlocks  forkchoice.SubBlockRecords
	maxRoutines int64
}

// Config options for the service.
type Config struct {
	Constants   *consensus.Constants
	Verifier    vdf.Verifier
	MaxRoutines int64
}

// NewService instantiates a new Service instance that will be registered
// into a running full node.
func NewService(ctx context.Context, cfg *Config) (*Service, error) {
	ctx, cancel := context.WithCancel(ctx)
	return &Service{
		ctx:         ctx,
		cancel:      cancel,
		store:       forkchoice.New(cfg.Constants, cfg.Verifier, log),
		subBlocks:   make(forkchoice.SubBlockRecords),
		maxRoutines: cfg.MaxRoutines,
	}, nil
}

// Start logs that the service is ready to receive messages and kicks off
// the periodic metrics sweep. Unlike the beacon-chain life-cycle this is
// grounded on, the staging store has no genesis-wait: a full node's store
// is usable the moment consensus constants are known.
func (s *Service) Start() {
	log.Info("full node staging store ready")
	async.RunEvery(s.ctx, metricsReportInterval, s.store.ReportMetrics)
}

// Stop cancels the service's context.
func (s *Service) Stop() error {
	s.cancel()
	return nil
}

// Subscribe registers ch to receive every Event the store publishes.
func (s *Service) Subscribe(ch chan<- forkchoice.Event) event.Subscription {
	return s.store.Subscribe(ch)
}

// Store returns the underlying forkchoice.Store, for callers (tests, the
// RPC surface) that need direct access beyond the Receiver methods.
func (s *Service) Store() *forkchoice.Store {
	return s.store
}

// RegisterSubBlock adds or replaces a sub-block record in the chain index
// the service hands to the store on every NewFinishedSubSlot and NewPeak
// call.
func (s *Service) RegisterSubBlock(record *types.SubBlockRecord) {
	s.subBlocks[record.HeaderHash] = record
}
