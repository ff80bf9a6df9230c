package nchorder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricChordsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nchorder_chords_completed_total",
		Help: "Chords recognized and dispatched since boot.",
	})
	metricChordsUnmapped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nchorder_chords_unmapped_total",
		Help: "Completed chords with no mapping in any table.",
	})
	metricMacrosReplayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nchorder_macros_replayed_total",
		Help: "Multi-character macros replayed key by key.",
	})
	metricLayoutLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nchorder_layout_loads_total",
		Help: "Layout load attempts by result.",
	}, []string{"result"})
	metricEntriesSkipped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nchorder_layout_entries_skipped",
		Help: "Entries skipped during the last layout load.",
	})
	metricSamplesPolled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nchorder_button_samples_total",
		Help: "Button samples consumed by the recognition loop.",
	})
)
