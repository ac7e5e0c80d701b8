package models

// Match type labels, one per result, chosen by the first scoring rule satisfied.
const (
	MatchExactTitle      = "exact_title"
	MatchTitleContains   = "title_contains"
	MatchArtistContains  = "artist_contains"
	MatchContentContains = "content_contains"
	// MatchAll labels results of an empty (match-everything) query.
	MatchAll = "all"
)

// SearchResult is a single matched song with ranking metadata. Results are
// built fresh per search invocation and never persisted.
type SearchResult struct {
	Song           *Song    `json:"song"`
	MatchType      string   `json:"match_type"`
	MatchedFields  []string `json:"matched_fields"`
	RelevanceScore float64  `json:"relevance_score"`
	Rank           int      `json:"rank"`
}

// ParsedQueryInfo echoes the parsed form of the query back to the caller.
type ParsedQueryInfo struct {
	Phrases      []string `json:"phrases"`
	AndTerms     []string `json:"and_terms"`
	OrTerms      []string `json:"or_terms"`
	NotTerms     []string `json:"not_terms"`
	HasOperators bool     `json:"has_operators"`
	RawQuery     string   `json:"raw_query"`
}

// QueryInfo wraps the parsed query in the search response.
type QueryInfo struct {
	ParsedQuery ParsedQueryInfo `json:"parsed_query"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results      []*SearchResult `json:"results"`
	TotalCount   int             `json:"total_count"`
	SearchTimeMs int64           `json:"search_time_ms"`
	QueryInfo    QueryInfo       `json:"query_info"`
	// Cached indicates the response was served from the result cache.
	Cached bool `json:"cached,omitempty"`
}

// Suggestion is a proposed completion for a short prefix.
type Suggestion struct {
	Text string `json:"text"`
	// Type is one of title, artist, genre.
	Type string `json:"type"`
	// SourceCount is how many visible songs carry this value.
	SourceCount int `json:"source_count"`
}

// SuggestionResponse is the response for a suggestion request.
type SuggestionResponse struct {
	Suggestions []*Suggestion `json:"suggestions"`
	Query       string        `json:"query"`
}
