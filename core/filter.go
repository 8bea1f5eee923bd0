package core

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// MatchKind selects how a Predicate compares a stored value.
type MatchKind int

const (
	// MatchExact compares the literal value, case-sensitively.
	MatchExact MatchKind = iota + 1
	// MatchPattern compares case-insensitively, either as a whole-value
	// match (Anchored) or as a substring match.
	MatchPattern
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchPattern:
		return "pattern"
	default:
		return fmt.Sprintf("MatchKind(%d)", int(k))
	}
}

// Predicate is a single backend-neutral field condition. Values are always
// treated literally; pattern metacharacters in user input have no effect.
type Predicate struct {
	Kind     MatchKind
	Value    string
	Anchored bool
}

// Exact builds an exact-match predicate.
func Exact(value string) Predicate {
	return Predicate{Kind: MatchExact, Value: value}
}

// Pattern builds a case-insensitive pattern predicate.
func Pattern(value string, anchored bool) Predicate {
	return Predicate{Kind: MatchPattern, Value: value, Anchored: anchored}
}

// Match reports whether a rendered field value satisfies the predicate.
func (p Predicate) Match(s string) bool {
	switch p.Kind {
	case MatchExact:
		return s == p.Value
	case MatchPattern:
		if p.Anchored {
			return strings.EqualFold(s, p.Value)
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(p.Value))
	default:
		return false
	}
}

// Regexp returns the equivalent case-insensitive regular expression for a
// pattern predicate. Exact predicates compile to a case-sensitive anchored
// expression.
func (p Predicate) Regexp() *regexp.Regexp {
	quoted := regexp.QuoteMeta(p.Value)
	switch {
	case p.Kind == MatchExact:
		return regexp.MustCompile("^" + quoted + "$")
	case p.Anchored:
		return regexp.MustCompile("(?i)^" + quoted + "$")
	default:
		return regexp.MustCompile("(?i)" + quoted)
	}
}

func (p Predicate) String() string {
	if p.Kind == MatchExact {
		return fmt.Sprintf("=%q", p.Value)
	}
	return fmt.Sprintf("~/%s/", p.Regexp().String())
}

// Filter maps canonical field paths to predicates. All predicates must hold.
// A nil or empty Filter matches every document.
type Filter map[string]Predicate

// Paths returns the filtered paths in sorted order.
func (f Filter) Paths() []string {
	paths := make([]string, 0, len(f))
	for path := range f {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Matches reports whether every predicate holds for the document. A missing
// field never satisfies a predicate.
func (f Filter) Matches(doc *Document) bool {
	for path, pred := range f {
		if !doc.Has(path) {
			return false
		}
		if !pred.Match(doc.Text(path)) {
			return false
		}
	}
	return true
}

func (f Filter) String() string {
	if len(f) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(f))
	for _, path := range f.Paths() {
		parts = append(parts, path+f[path].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
