// Package memstore keeps session records in process memory.
//
// Records live in a mutex-guarded map, keyed exactly like the Redis backend
// ("<cookie name>_<identity>"), so handlers behave identically against both.
// Expired records are skipped on load; [Store.StartCleanup] adds periodic
// eviction for long-lived processes.
//
// The store suits tests and single-process deployments. Nothing is shared
// across processes and nothing survives a restart.
package memstore
