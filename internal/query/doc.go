// Package query defines the normalised mapping query.
//
// A Query is what the filter, sort and paginate stages consume. Callers build
// one from loosely typed input (CLI flags, URL parameters) with Normalize,
// which never rejects input:
//
//	raw value                   normalised
//	---------                   ----------
//	stage ""                    "all"
//	present "bogus"             all
//	sort ""                     default
//	page "abc" / "0" / "-3"     1
//	perPage "abc"               DefaultPerPage
//	perPage "0" / "5000"        clamped to [1, MaxPerPage]
//
// Normalize reports each coercion it applied as a warning so callers can log
// them; the query itself is always usable.
//
// Range filters are a comma-separated list of tokens. A token containing "|"
// is a pair token (source half | target half); any other token is plain:
//
//	"1-12,5|2"  →  [{Raw: "1-12"}, {Raw: "5|2", Source: "5", Target: "2", Pair: true}]
package query
