package prometheus

import (
	"errors"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hexxet/httpsession"
	"github.com/hexxet/httpsession/metrics/export/internaldefs"
)

// ErrNilSource is returned when the exporter is constructed without a
// metrics source.
var ErrNilSource = errors.New("prometheus: nil metrics source")

// metricsSource is the read surface the exporter needs.
// [httpsession.Metrics] implements it.
type metricsSource interface {
	Snapshot() httpsession.MetricsSnapshot
}

// Exporter renders session metrics as a [prom.Collector]. Every scrape pulls
// a fresh snapshot from the source; the exporter itself holds no mutable
// state and a single instance is safe for concurrent scrapes.
type Exporter struct {
	source     metricsSource
	counters   map[httpsession.MetricID]*prom.Desc
	histograms map[httpsession.MetricID]*prom.Desc
}

var _ prom.Collector = (*Exporter)(nil)

// New builds an Exporter reading from source.
func New(source metricsSource) (*Exporter, error) {
	if source == nil {
		return nil, ErrNilSource
	}

	e := &Exporter{
		source:     source,
		counters:   make(map[httpsession.MetricID]*prom.Desc, len(internaldefs.CounterDefs)),
		histograms: make(map[httpsession.MetricID]*prom.Desc, len(internaldefs.HistogramDefs)),
	}
	for _, def := range internaldefs.CounterDefs {
		e.counters[def.ID] = prom.NewDesc(def.Name, def.Help, nil, nil)
	}
	for _, def := range internaldefs.HistogramDefs {
		e.histograms[def.ID] = prom.NewDesc(def.Name, def.Help, nil, nil)
	}
	return e, nil
}

// Describe implements [prom.Collector].
func (e *Exporter) Describe(ch chan<- *prom.Desc) {
	for _, def := range internaldefs.CounterDefs {
		ch <- e.counters[def.ID]
	}
	for _, def := range internaldefs.HistogramDefs {
		ch <- e.histograms[def.ID]
	}
}

// Collect implements [prom.Collector]. A disabled collector snapshots empty,
// in which case nothing is rendered rather than a wall of zeros.
func (e *Exporter) Collect(ch chan<- prom.Metric) {
	snap := e.source.Snapshot()
	if len(snap.Counters) == 0 && len(snap.Histograms) == 0 {
		return
	}

	for _, def := range internaldefs.CounterDefs {
		ch <- prom.MustNewConstMetric(e.counters[def.ID], prom.CounterValue, float64(snap.Counters[def.ID]))
	}

	for _, def := range internaldefs.HistogramDefs {
		raw, ok := snap.Histograms[def.ID]
		if !ok {
			continue
		}
		counts := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))

		buckets := make(map[float64]uint64, len(internaldefs.HistogramBoundsSeconds))
		for i, bound := range internaldefs.HistogramBoundsSeconds {
			buckets[bound] = counts[i]
		}

		// Sum is not tracked in snapshots; expose a stable zero.
		ch <- prom.MustNewConstHistogram(e.histograms[def.ID], counts[len(counts)-1], 0, buckets)
	}
}

// Handler returns an [http.Handler] serving these metrics from a private
// registry. The global Prometheus registry is left untouched.
func (e *Exporter) Handler() http.Handler {
	reg := prom.NewRegistry()
	reg.MustRegister(e)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
