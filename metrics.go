package heed

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the prometheus collectors this package registers,
// mirroring the teacher's practice of giving every long-lived component
// its own named gauges/histograms rather than ad-hoc counters.
var (
	commitDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "heed",
		Subsystem: "txn",
		Name:      "commit_duration_seconds",
		Help:      "Time spent committing a transaction.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	readerSlotsInUse = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "heed",
		Subsystem: "env",
		Name:      "reader_slots_in_use",
		Help:      "Reader lock table slots currently occupied.",
	}, []string{"path"})

	pageCounts = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "heed",
		Subsystem: "db",
		Name:      "pages",
		Help:      "Page counts by kind (branch, leaf, overflow) plus the entry count (kind=entries) for a sub-database, from its last Stat call.",
	}, []string{"db", "kind"})
)

// RegisterMetrics registers this package's collectors with reg. Callers
// that embed heed into a larger service with its own registry call this
// once at startup; it is not called automatically so importing the
// package never has a side effect on the default registry.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{commitDuration, readerSlotsInUse, pageCounts} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func observeCommit(kind string, seconds float64) {
	commitDuration.WithLabelValues(kind).Observe(seconds)
}

func observePageCounts(db string, stat Stat) {
	pageCounts.WithLabelValues(db, "branch").Set(float64(stat.BranchPages))
	pageCounts.WithLabelValues(db, "leaf").Set(float64(stat.LeafPages))
	pageCounts.WithLabelValues(db, "overflow").Set(float64(stat.OverflowPages))
	pageCounts.WithLabelValues(db, "entries").Set(float64(stat.Entries))
}
