// Package store writes a provenance snapshot to SQLite and queries it back.
//
// The export is a denormalised, read-only copy of one payload:
//   - mappings: resolved descriptors, label, present flag, event count
//   - events: resolved labels per event, in array order (position)
//   - timeline_steps: every replayed step with its snapshot and digest
//   - export_runs: one row describing the export (uuid v7 id)
//
// # Critical Patterns
//
// Deterministic query results:
//   - Every list query ends its ORDER BY with the mapping id, which is the
//     payload position, so ties keep payload order exactly as the
//     in-memory engine's stable sorts do.
//
// Search agreement with the engine:
//   - Text columns used for search are stored pre-folded
//     (provenance.Fold). SQLite's LOWER only folds ASCII; folding in Go
//     keeps matching identical to engine.Matches.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
