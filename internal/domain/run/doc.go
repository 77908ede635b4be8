// Package run provides execution history for the tracer.
//
// Every finished run is retained as a Record: the submitted source, its
// content hash, the outcome, and the full trace. Records power replay
// (fetching a past run without re-executing it) and deduplication
// (byte-identical source maps to the already-recorded trace).
//
// Components:
//   - Service: execute, deduplicate, replay, list, aggregate
//   - Store: zstd-compressed JSON records, one file per run
//   - history: bounded window of observations behind Stats
//
// Deduplication:
//   - Execution is deterministic, so the source hash is the cache key
//   - Timed-out and abandoned runs are never cached; a faster machine
//     or a patient client deserves a fresh attempt
//   - Concurrent submissions of the same source share one execution
//
// Storage Structure:
//   - Records stored as zstd-compressed JSON
//   - Path: {dir}/{run-id}.json.zst
//   - ULID run ids keep directory listings in creation order
//   - WithRetention caps the window; the oldest runs are evicted from
//     the store, the listing, and the deduplication index as new ones
//     land. Stats keeps its own window and is unaffected by eviction.
//
// Example Usage:
//
//	store, err := run.NewStore(dir)
//	svc := run.NewService(runner, store, log).WithMetrics(metrics)
//	rec, cached, err := svc.Execute(ctx, code)
package run
