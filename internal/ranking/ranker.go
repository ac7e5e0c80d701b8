// Package ranking scores candidate songs against a parsed query.
package ranking

import (
	"sort"
	"strings"

	"github.com/chordme/songsearch/internal/models"
	"github.com/chordme/songsearch/internal/query"
)

// Searchable field names, in the deterministic order they are reported in
// matched_fields. Genre and difficulty are searchable text (a query like
// "rock AND beginner" matches on them) but score in the content tier.
const (
	FieldTitle      = "title"
	FieldArtist     = "artist"
	FieldContent    = "content"
	FieldGenre      = "genre"
	FieldDifficulty = "difficulty"
)

// Base scores for the match-type ladder. Fractional components scale by the
// share of query terms found in the driving field, keeping each tier inside
// its own score band (exact_title > title_contains > artist_contains >
// content_contains, always).
const (
	scoreExactTitle  = 10.0
	scoreTitleBase   = 5.0
	scoreTitleSpan   = 4.0
	scoreArtistBase  = 2.0
	scoreArtistSpan  = 2.5
	scoreContentBase = 0.5
	scoreContentSpan = 1.0
	scoreMatchAll    = 1.0
)

// Ranker evaluates songs against a parsed query. Stateless; safe for
// concurrent use.
type Ranker struct{}

// NewRanker creates a Ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// fieldText returns the lowercased, whitespace-normalized searchable text of
// each field.
func fieldText(song *models.Song) map[string]string {
	return map[string]string{
		FieldTitle:      normalize(song.Title),
		FieldArtist:     normalize(song.Artist),
		FieldContent:    normalize(song.Content),
		FieldGenre:      normalize(song.Genre),
		FieldDifficulty: normalize(song.Difficulty),
	}
}

var fieldOrder = []string{FieldTitle, FieldArtist, FieldContent, FieldGenre, FieldDifficulty}

// normalize lowercases and collapses contiguous whitespace, so phrase
// containment ignores line breaks and runs of spaces.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Evaluate decides whether song matches q and computes its result metadata.
// Returns nil when the song does not match or is excluded by a NOT term.
// Pure function over (query, song).
func (r *Ranker) Evaluate(q *query.ParsedQuery, song *models.Song) *models.SearchResult {
	fields := fieldText(song)

	// NOT terms exclude the song entirely, regardless of other matches.
	for _, term := range q.NotTerms {
		for _, text := range fields {
			if strings.Contains(text, term) {
				return nil
			}
		}
	}

	units := matchUnits(q)
	if len(units) == 0 {
		// Empty (or purely negated) query matches everything at a baseline.
		return &models.SearchResult{
			Song:           song,
			MatchType:      models.MatchAll,
			MatchedFields:  []string{},
			RelevanceScore: scoreMatchAll,
		}
	}

	// Every phrase must appear verbatim in at least one field.
	for _, phrase := range q.Phrases {
		if !inAnyField(fields, phrase) {
			return nil
		}
	}
	// Every AND term must appear in at least one field.
	for _, term := range q.AndTerms {
		if !inAnyField(fields, term) {
			return nil
		}
	}
	// At least one OR term must appear somewhere.
	if len(q.OrTerms) > 0 {
		found := false
		for _, term := range q.OrTerms {
			if inAnyField(fields, term) {
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}

	matchType, score := r.classify(q, fields, units)
	return &models.SearchResult{
		Song:           song,
		MatchType:      matchType,
		MatchedFields:  matchedFields(fields, units),
		RelevanceScore: score,
	}
}

// classify picks the single match-type label and score, first rule satisfied
// wins.
func (r *Ranker) classify(q *query.ParsedQuery, fields map[string]string, units []string) (string, float64) {
	title := fields[FieldTitle]

	if title != "" && title == queryText(q) {
		return models.MatchExactTitle, scoreExactTitle
	}

	if frac := matchFraction(title, units); frac > 0 {
		return models.MatchTitleContains, scoreTitleBase + scoreTitleSpan*frac
	}

	if frac := matchFraction(fields[FieldArtist], units); frac > 0 {
		return models.MatchArtistContains, scoreArtistBase + scoreArtistSpan*frac
	}

	rest := fields[FieldContent] + " " + fields[FieldGenre] + " " + fields[FieldDifficulty]
	frac := matchFraction(rest, units)
	if frac == 0 {
		// Matched only through OR-bucket coverage across fields; still a
		// content-tier hit.
		frac = 1.0 / float64(len(units))
	}
	return models.MatchContentContains, scoreContentBase + scoreContentSpan*frac
}

// queryText is the full query string used for the exact_title comparison: a
// lone quoted phrase compares as its phrase, anything else as the trimmed raw
// text with quote characters dropped.
func queryText(q *query.ParsedQuery) string {
	if len(q.Phrases) == 1 && len(q.AndTerms) == 0 && len(q.OrTerms) == 0 {
		return q.Phrases[0]
	}
	return normalize(strings.ReplaceAll(q.RawQuery, `"`, " "))
}

// matchUnits returns the positive matchable units of the query: phrases plus
// AND and OR terms.
func matchUnits(q *query.ParsedQuery) []string {
	units := make([]string, 0, len(q.Phrases)+len(q.AndTerms)+len(q.OrTerms))
	units = append(units, q.Phrases...)
	units = append(units, q.PositiveTerms()...)
	return units
}

func inAnyField(fields map[string]string, needle string) bool {
	for _, text := range fields {
		if text != "" && strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

// matchFraction returns the share of units found as substrings of text.
func matchFraction(text string, units []string) float64 {
	if text == "" || len(units) == 0 {
		return 0
	}
	count := 0
	for _, u := range units {
		if strings.Contains(text, u) {
			count++
		}
	}
	return float64(count) / float64(len(units))
}

// matchedFields collects every field that independently satisfied some part of
// the query, not only the field driving the match type.
func matchedFields(fields map[string]string, units []string) []string {
	matched := make([]string, 0, len(fieldOrder))
	for _, name := range fieldOrder {
		text := fields[name]
		if text == "" {
			continue
		}
		for _, u := range units {
			if strings.Contains(text, u) {
				matched = append(matched, name)
				break
			}
		}
	}
	return matched
}

// Rank evaluates all candidates and returns matches ordered by relevance
// score descending, with ties broken by more recent modification time, then
// by ID for determinism. Rank numbers are assigned from 1.
func (r *Ranker) Rank(q *query.ParsedQuery, songs []*models.Song) []*models.SearchResult {
	results := make([]*models.SearchResult, 0, len(songs))
	for _, song := range songs {
		if res := r.Evaluate(q, song); res != nil {
			results = append(results, res)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}
		if !results[i].Song.UpdatedAt.Equal(results[j].Song.UpdatedAt) {
			return results[i].Song.UpdatedAt.After(results[j].Song.UpdatedAt)
		}
		return results[i].Song.ID < results[j].Song.ID
	})

	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}
