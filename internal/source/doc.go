// Package source loads the provenance dataset.
//
// A Source fetches and decodes a payload; FileSource reads a local file
// written by the generator, either plain JSON (mappings.json) or zstd
// compressed (mappings.json.zst).
//
// Loader is the only process-wide mutable state in provq:
//
//	empty ──Get──▶ loading ──ok──▶ loaded(snapshot, generation n)
//	  ▲               │                 │
//	  └────error──────┘                 └──Reload──▶ loading ──ok──▶ loaded(n+1)
//
// Concurrent callers share one in-flight load through singleflight. The
// loaded snapshot also carries a reverse index from descriptor strings to
// mapping ids, built in the same load and swapped in together.
package source
