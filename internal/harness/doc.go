// Package harness runs provenance scenarios written in YAML.
//
// A scenario describes a small dataset in readable form, the list queries
// to run against it, and assertions on replayed timelines. The harness
// builds the dictionary-compressed payload, writes it out as JSON, checks it
// against the payload schema, decodes it again and only then queries it, so
// every scenario also exercises the wire codec.
//
// # Scenario Format
//
//	name: add_then_remove
//	description: "A removed range disappears from the final snapshot"
//	meta:
//	  generated_on: "2025-01-01T00:00:00Z"
//	mappings:
//	  - source: anidb:1
//	    target: tvdb:100:s1
//	    present: true
//	    events:
//	      - action: add
//	        stage: upstream
//	        actor: mapper-bot
//	        source_range: "1-12"
//	        target_range: "S1E1-S1E12"
//	      - action: remove
//	        source_range: "1-12"
//	        target_range: "S1E1-S1E12"
//	        effective: false
//	queries:
//	  - name: bots
//	    query: { actor: bot, sort: timeline }
//	    ids: [0]
//	assertions:
//	  - type: final_active
//	    mapping: 0
//	    active: ["1-12: S1E1-S1E12"]
//	golden: [0]
//
// Events are effective unless effective: false is given.
//
// # Assertion Types
//
//   - final_active: the active ranges after the last event, "src: tgts"
//   - effects: the effect of every step in chronological order
//   - empty_timeline: the mapping has no events
//   - summary: dataset-wide counts
//   - presence_consistent: every present flag agrees with its replay
//   - lookup_error: looking up id fails with the given code
//
// # Golden Timelines
//
// Mappings listed under golden are rendered with RenderTimeline and
// compared against testdata/golden/{scenario}_{id}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
