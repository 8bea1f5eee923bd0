package query

import (
	"strings"

	"github.com/poiesic/logscope/core"
)

// NormalizeFilters converts raw pairs into backend predicates.
//
// Identifier fields become exact, case-sensitive matches. All other fields
// become case-insensitive pattern matches, anchored at both ends when
// anchored is true and matched as substrings otherwise. Pairs with an empty
// key or value are dropped. When a key repeats, the last value wins.
func NormalizeFilters(pairs []Pair, anchored bool) core.Filter {
	filter := make(core.Filter, len(pairs))
	for _, p := range pairs {
		key := strings.TrimSpace(p.Key)
		value := strings.TrimSpace(p.Value)
		if key == "" || value == "" {
			continue
		}
		if core.IsIdentifier(key) {
			filter[key] = core.Exact(value)
		} else {
			filter[key] = core.Pattern(value, anchored)
		}
	}
	return filter
}

// ParseFilter parses a filter clause and normalizes it in one step.
func ParseFilter(clause string, anchored bool) core.Filter {
	return NormalizeFilters(ParseClauses(clause), anchored)
}
