package query

import (
	"regexp"
	"strings"

	"github.com/poiesic/logscope/core"
)

// IntentKind identifies which retrieval path a question takes.
type IntentKind int

const (
	// IntentSemantic routes the question to embedding search plus generation.
	IntentSemantic IntentKind = iota
	// IntentShowAllLogs dumps whole records, optionally filtered.
	IntentShowAllLogs
	// IntentListUnique lists the distinct values of one field.
	IntentListUnique
	// IntentStructuredList projects named fields of matching records.
	IntentStructuredList
)

func (k IntentKind) String() string {
	switch k {
	case IntentShowAllLogs:
		return "show-all-logs"
	case IntentListUnique:
		return "list-unique-field"
	case IntentStructuredList:
		return "structured-list"
	default:
		return "semantic-fallback"
	}
}

// Intent is the parsed form of one input line. Only the members relevant to
// Kind are set.
type Intent struct {
	Kind IntentKind

	// Question is the input exactly as received, for the semantic path.
	Question string

	// Field is the canonical path for IntentListUnique.
	Field string

	// Fields are the canonical paths for IntentStructuredList, in input order.
	Fields []string

	// Filter applies to IntentShowAllLogs and IntentStructuredList.
	Filter core.Filter
}

var (
	showAllPattern = regexp.MustCompile(`(?i)^show\s+(?:all\s+)?logs\b(?:\s+(.*))?$`)
	filterKeyword  = regexp.MustCompile(`(?i)^(?:for|with|where|having)\b\s*`)
	uniquePattern  = regexp.MustCompile(`(?i)^list\s+unique(?:\s+(.*))?$`)
	verbPattern    = regexp.MustCompile(`(?i)^(?:list|show|find)(?:\s|$)`)
)

type rule struct {
	name  string
	match func(s string) bool
	build func(s, raw string) (*Intent, error)
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{
		name:  "show-all-logs",
		match: showAllPattern.MatchString,
		build: func(s, raw string) (*Intent, error) {
			m := showAllPattern.FindStringSubmatch(s)
			return &Intent{
				Kind:     IntentShowAllLogs,
				Question: raw,
				Filter:   ParseFilter(filterKeyword.ReplaceAllString(m[1], ""), true),
			}, nil
		},
	},
	{
		name:  "list-unique",
		match: uniquePattern.MatchString,
		build: func(s, raw string) (*Intent, error) {
			m := uniquePattern.FindStringSubmatch(s)
			field := CleanField(m[1])
			if field == "" {
				return nil, ErrNoFields
			}
			return &Intent{
				Kind:     IntentListUnique,
				Question: raw,
				Field:    ResolveField(field),
			}, nil
		},
	},
	{
		name:  "structured-list",
		match: verbPattern.MatchString,
		build: func(s, raw string) (*Intent, error) {
			fields, pairs, err := ExtractStructured(s)
			if err != nil {
				return nil, err
			}
			return &Intent{
				Kind:     IntentStructuredList,
				Question: raw,
				Fields:   fields,
				Filter:   NormalizeFilters(pairs, false),
			}, nil
		},
	},
}

// Classify decides which path a question takes and extracts its structured
// parts. It has no side effects.
//
// ErrNoFields is returned for structured input that names no usable field;
// ErrEmptyQuery for blank input.
func Classify(input string) (*Intent, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, ErrEmptyQuery
	}

	for _, r := range rules {
		if r.match(s) {
			return r.build(s, input)
		}
	}

	return &Intent{Kind: IntentSemantic, Question: input}, nil
}
