// Package prometheus exposes session metrics to Prometheus.
//
// [New] accepts a metrics source such as [httpsession.Metrics] and returns a
// [prometheus.Collector] rendering all session counters and the load latency
// histogram. Counter names are prefixed httpsession_*_total; the single
// histogram is httpsession_load_latency_seconds. [Exporter.Handler] mounts
// the collector on a private registry for callers that only want a /metrics
// endpoint.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry. Callers register
//     the collector or mount the Handler themselves.
//   - Mutate collector state.
package prometheus
