package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	unfinishedBlocksGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gochia_unfinished_blocks",
		Help: "Number of unfinished blocks currently held in the staging store.",
	})
	candidateBlocksGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gochia_candidate_blocks",
		Help: "Number of candidate blocks currently held in the staging store.",
	})
	disconnectedBlocksGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gochia_disconnected_blocks",
		Help: "Number of disconnected blocks currently held in the staging store.",
	})
	finishedSubSlotsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gochia_finished_sub_slots",
		Help: "Number of finished sub-slots currently held in the staging store's ring.",
	})
	deferredMessagesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gochia_deferred_messages",
		Help: "Number of challenges with messages deferred in a future cache, by cache name.",
	}, []string{"cache"})
)

// ReportUnfinishedBlocks publishes the current size of an
// UnfinishedBlockTable.
func ReportUnfinishedBlocks(t *UnfinishedBlockTable) {
	unfinishedBlocksGauge.Set(float64(t.Len()))
}

// ReportCandidateBlocks publishes the current size of a
// CandidateBlockTable.
func ReportCandidateBlocks(t *CandidateBlockTable) {
	candidateBlocksGauge.Set(float64(t.Len()))
}

// ReportDisconnectedBlocks publishes the current size of a
// DisconnectedBlockTable.
func ReportDisconnectedBlocks(t *DisconnectedBlockTable) {
	disconnectedBlocksGauge.Set(float64(t.Len()))
}

// ReportFinishedSubSlots publishes the number of finished sub-slots held in
// the staging store's ring.
func ReportFinishedSubSlots(n int) {
	finishedSubSlotsGauge.Set(float64(n))
}

// ReportDeferred publishes the current number of distinct challenges held
// in a DeferredCache, labeled by name (e.g. "eos", "sp", "ip", "block").
func ReportDeferred[T any](name string, d *DeferredCache[T]) {
	deferredMessagesGauge.WithLabelValues(name).Set(float64(d.Len()))
}
