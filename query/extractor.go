package query

import (
	"regexp"
	"strings"
)

var (
	structuredPattern = regexp.MustCompile(`(?i)^(list|show|find)\s+(.+?)(?:\s+(?:where|with|having|for)(?:\s+(.+))?)?$`)
	listSeparator     = regexp.MustCompile(`(?i)\s*,\s*|\s+and\s+`)
	fieldStrip        = regexp.MustCompile(`[^a-zA-Z0-9_.]`)
)

// Pair is one raw key/value filter clause with the key already resolved to
// its canonical path.
type Pair struct {
	Key   string
	Value string
}

// ExtractStructured parses "list|show|find <fields> [where|with|having|for <clauses>]".
// It returns the canonical fields in input order and the raw filter pairs.
// ErrNoFields is returned when no field survives stripping.
func ExtractStructured(input string) ([]string, []Pair, error) {
	m := structuredPattern.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return nil, nil, ErrNoFields
	}

	fields := ParseFields(m[2])
	if len(fields) == 0 {
		return nil, nil, ErrNoFields
	}
	return fields, ParseClauses(m[3]), nil
}

// ParseFields splits a field list on "," or "and", strips each token to
// [a-zA-Z0-9_.], resolves aliases and drops empties.
func ParseFields(list string) []string {
	var fields []string
	for _, token := range listSeparator.Split(list, -1) {
		token = CleanField(token)
		if token == "" {
			continue
		}
		fields = append(fields, ResolveField(token))
	}
	return fields
}

// CleanField removes every character outside [a-zA-Z0-9_.].
func CleanField(token string) string {
	return fieldStrip.ReplaceAllString(token, "")
}

// ParseClauses splits a filter clause on "," or "and". A sub-clause
// containing "=" is read as key=value with surrounding quotes stripped from
// the value; otherwise the first word is the key and the rest the value.
func ParseClauses(clause string) []Pair {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil
	}

	var pairs []Pair
	for _, part := range listSeparator.Split(clause, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var key, value string
		if k, v, ok := strings.Cut(part, "="); ok {
			key, value = k, unquote(strings.TrimSpace(v))
		} else {
			words := strings.Fields(part)
			key = words[0]
			value = strings.Join(words[1:], " ")
		}

		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		pairs = append(pairs, Pair{Key: ResolveField(key), Value: value})
	}
	return pairs
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}
