// Package query parses raw search strings into phrase and term buckets.
package query

import (
	"regexp"
	"strings"
)

// ParsedQuery is the structured form of a raw search string.
//
// A bare query with no operators or quotes populates AndTerms with the entire
// trimmed string as one implicit term. An empty query leaves every bucket
// empty, which downstream matching treats as "match everything".
type ParsedQuery struct {
	// Phrases are exact quoted phrases in order of appearance,
	// lowercased and whitespace-normalized.
	Phrases []string
	// AndTerms must all match.
	AndTerms []string
	// OrTerms match when at least one matches.
	OrTerms []string
	// NotTerms must not match anywhere.
	NotTerms []string
	// HasOperators reports whether boolean or phrase syntax was detected.
	HasOperators bool
	// RawQuery is the original input, echoed back to the caller.
	RawQuery string
}

// IsEmpty reports whether no phrase or term bucket is populated.
func (q *ParsedQuery) IsEmpty() bool {
	return len(q.Phrases) == 0 && len(q.AndTerms) == 0 &&
		len(q.OrTerms) == 0 && len(q.NotTerms) == 0
}

// PositiveTerms returns all terms that must or may match (AND and OR buckets),
// in order of first appearance.
func (q *ParsedQuery) PositiveTerms() []string {
	terms := make([]string, 0, len(q.AndTerms)+len(q.OrTerms))
	terms = append(terms, q.AndTerms...)
	terms = append(terms, q.OrTerms...)
	return terms
}

var phraseRegex = regexp.MustCompile(`"([^"]*)"`)

// Parse converts a raw, possibly empty, query string into a ParsedQuery.
// Pure function of its input; no side effects.
func Parse(raw string) *ParsedQuery {
	parsed := &ParsedQuery{
		Phrases:  []string{},
		AndTerms: []string{},
		OrTerms:  []string{},
		NotTerms: []string{},
		RawQuery: raw,
	}

	working := strings.TrimSpace(raw)
	if working == "" {
		return parsed
	}

	working = extractPhrases(working, parsed)
	// An unclosed quote is dropped and its content tokenized as ordinary terms.
	working = strings.ReplaceAll(working, `"`, " ")
	working = strings.TrimSpace(working)

	hasOR := containsWord(working, "OR")
	hasAND := containsWord(working, "AND")
	hasNOT := containsWord(working, "NOT") || hasNegationPrefix(working)
	parsed.HasOperators = len(parsed.Phrases) > 0 || hasOR || hasAND || hasNOT

	if !parsed.HasOperators {
		// No boolean or phrase syntax: the entire remaining text is one
		// implicit AND term.
		if working != "" {
			parsed.AndTerms = appendUnique(parsed.AndTerms, normalizeTerm(working))
		}
		return parsed
	}

	tokens := strings.Fields(working)
	var plain []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok == "NOT":
			if i+1 < len(tokens) {
				i++
				if term := normalizeTerm(strings.TrimPrefix(tokens[i], "-")); term != "" {
					parsed.NotTerms = appendUnique(parsed.NotTerms, term)
				}
			}
		case tok == "AND", tok == "OR":
			// Connectives only; operands were or will be collected.
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			if term := normalizeTerm(strings.TrimPrefix(tok, "-")); term != "" {
				parsed.NotTerms = appendUnique(parsed.NotTerms, term)
			}
		default:
			if term := normalizeTerm(tok); term != "" {
				plain = append(plain, term)
			}
		}
	}

	// OR anywhere groups all plain tokens into one OR bucket, not pairwise.
	if hasOR {
		for _, term := range plain {
			parsed.OrTerms = appendUnique(parsed.OrTerms, term)
		}
	} else {
		for _, term := range plain {
			parsed.AndTerms = appendUnique(parsed.AndTerms, term)
		}
	}

	// A query that is only operator keywords with no operands falls open to a
	// plain search for that text rather than an error.
	if parsed.IsEmpty() {
		parsed.HasOperators = false
		parsed.AndTerms = appendUnique(parsed.AndTerms, normalizeTerm(strings.TrimSpace(raw)))
	}

	return parsed
}

// extractPhrases pulls double-quoted phrases out of the query in order of
// appearance and returns the query with them removed.
func extractPhrases(working string, parsed *ParsedQuery) string {
	matches := phraseRegex.FindAllStringSubmatch(working, -1)
	for _, match := range matches {
		phrase := normalizeTerm(match[1])
		if phrase != "" {
			parsed.Phrases = append(parsed.Phrases, phrase)
		}
	}
	return phraseRegex.ReplaceAllString(working, " ")
}

// normalizeTerm lowercases and collapses internal whitespace.
func normalizeTerm(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// containsWord reports whether word appears as a whole whitespace-separated
// token (case-sensitive, matching the operator keywords).
func containsWord(s, word string) bool {
	for _, tok := range strings.Fields(s) {
		if tok == word {
			return true
		}
	}
	return false
}

// hasNegationPrefix reports whether any token uses the -term shorthand.
func hasNegationPrefix(s string) bool {
	for _, tok := range strings.Fields(s) {
		if strings.HasPrefix(tok, "-") && len(tok) > 1 {
			return true
		}
	}
	return false
}

func appendUnique(terms []string, term string) []string {
	for _, t := range terms {
		if t == term {
			return terms
		}
	}
	return append(terms, term)
}
