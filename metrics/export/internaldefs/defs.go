package internaldefs

import (
	"github.com/hexxet/httpsession"
)

// CounterDef describes one exported counter metric.
type CounterDef struct {
	ID   httpsession.MetricID
	Name string
	Help string
}

// HistogramDef describes one exported histogram metric.
type HistogramDef struct {
	ID   httpsession.MetricID
	Name string
	Help string
}

// CounterDefs lists all counters exported by every exporter implementation,
// in a stable render order.
var CounterDefs = []CounterDef{
	{
		ID:   httpsession.MetricLoadFresh,
		Name: "httpsession_load_fresh_total",
		Help: "Loads that started a fresh session because the request carried no session cookie.",
	},
	{
		ID:   httpsession.MetricLoadMiss,
		Name: "httpsession_load_miss_total",
		Help: "Loads whose cookie named a record that was missing or expired.",
	},
	{
		ID:   httpsession.MetricLoadHit,
		Name: "httpsession_load_hit_total",
		Help: "Loads that restored a session from a stored record.",
	},
	{
		ID:   httpsession.MetricLoadCorrupt,
		Name: "httpsession_load_corrupt_total",
		Help: "Loads that found a record but could not decode it.",
	},
	{
		ID:   httpsession.MetricSaveNewKey,
		Name: "httpsession_save_new_key_total",
		Help: "Saves that generated a new session key.",
	},
	{
		ID:   httpsession.MetricSaveReissue,
		Name: "httpsession_save_reissue_total",
		Help: "Saves that re-issued the cookie for an existing session key.",
	},
	{
		ID:   httpsession.MetricSaveClear,
		Name: "httpsession_save_clear_total",
		Help: "Saves of an emptied session that cleared the session cookie.",
	},
}

// HistogramDefs lists all histograms exported by every exporter implementation.
var HistogramDefs = []HistogramDef{
	{
		ID:   httpsession.MetricLoadLatency,
		Name: "httpsession_load_latency_seconds",
		Help: "Store read latency during session load.",
	},
}

// HistogramBounds are the upper bucket bounds, in seconds, rendered as
// Prometheus le label values. The last bound is +Inf.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundsSeconds are the finite upper bucket bounds in seconds.
// The implicit +Inf bucket is not included.
var HistogramBoundsSeconds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix provides OTel-safe instrument name suffixes matching
// HistogramBounds index-for-index.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets converts a raw snapshot bucket slice into a fixed-size
// array. Short input is zero-extended and long input is truncated so
// exporters always render exactly len(HistogramBounds) buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts as
// required by the Prometheus histogram exposition format.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var sum uint64
	for i, v := range raw {
		sum += v
		out[i] = sum
	}
	return out
}
