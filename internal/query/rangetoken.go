package query

import "strings"

// RangeToken is one comma-separated term of a range filter.
type RangeToken struct {
	Raw    string
	Source string
	Target string
	Pair   bool
}

// ParseRangeTokens splits a range filter on commas. Tokens are trimmed and
// empty tokens dropped. A token containing "|" is split at the first pipe
// into trimmed source and target halves.
func ParseRangeTokens(s string) []RangeToken {
	var tokens []RangeToken
	for _, part := range strings.Split(s, ",") {
		raw := strings.TrimSpace(part)
		if raw == "" {
			continue
		}
		tok := RangeToken{Raw: raw}
		if src, tgt, ok := strings.Cut(raw, "|"); ok {
			tok.Pair = true
			tok.Source = strings.TrimSpace(src)
			tok.Target = strings.TrimSpace(tgt)
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
