package qdrant

import (
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/poiesic/logscope/core"
)

// buildFilter translates a core.Filter into Must conditions over the
// payload mirrors. Returns nil for an empty filter.
//
// Exact predicates match the rendered value keyword. Anchored patterns
// match the lowercased keyword. Unanchored patterns use a text match on
// the lowercased mirror, which Qdrant evaluates as a substring match when
// the field has no full-text index.
func buildFilter(f core.Filter) *qdrant.Filter {
	if len(f) == 0 {
		return nil
	}

	conditions := make([]*qdrant.Condition, 0, len(f))
	for _, path := range f.Paths() {
		pred := f[path]
		switch {
		case pred.Kind == core.MatchExact:
			conditions = append(conditions, qdrant.NewMatchKeyword(textKey(path), pred.Value))
		case pred.Anchored:
			conditions = append(conditions, qdrant.NewMatchKeyword(lowerKey(path), strings.ToLower(pred.Value)))
		default:
			conditions = append(conditions, qdrant.NewMatchText(lowerKey(path), strings.ToLower(pred.Value)))
		}
	}

	return &qdrant.Filter{Must: conditions}
}
