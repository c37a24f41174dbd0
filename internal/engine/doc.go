// Package engine implements the provq query and replay engine.
//
// The engine is a pure function of an immutable *provenance.Payload and a
// normalised query.Query. Nothing in this package performs I/O, takes a
// lock or mutates its inputs, so any number of goroutines may run queries
// and replays against the same payload concurrently.
//
// ARCHITECTURE:
//
// Query pipeline:
//
//	[Payload] → FilterAndSort(q) → []Entry → Paginate(q) → Page
//	               ↑
//	          Matcher (compiled once per query)
//
// FilterAndSort keeps each mapping's original position (its MappingID) so
// callers can refer back to it after sorting and paging.
//
// Timeline replay:
//
//	[Mapping] → for each event in array order:
//	              apply effective add/remove to the active set
//	              render canonical snapshot text
//	              diff against the previous rendering
//	          → Timeline (chronological); Reversed() for display
//
// Replay is invoked lazily, one mapping at a time. Diffs are computed once,
// forward; reversing a timeline never recomputes them.
//
// Summary runs independently over the whole payload.
//
// CRITICAL PATTERNS:
//
// Total functions: a malformed dictionary index resolves to an absent label
// and the placeholder "-" at presentation time. No query, sort, page or
// replay operation returns an error. Only single-mapping lookup fails, with
// a *LookupError.
//
// Determinism: the same mapping always replays to the same steps, snapshots
// and diffs. Sorts are stable.
package engine
