// Package otel provides OpenTelemetry metric exporter bindings for session
// counters and histograms.
//
// [New] registers an Int64ObservableCounter per session counter and an
// Int64ObservableGauge per histogram bucket. A single callback reads one
// metrics snapshot on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate collector state.
package otel
