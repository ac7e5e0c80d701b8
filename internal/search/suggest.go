package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/chordme/songsearch/internal/models"
)

// minPrefixLen is the shortest prefix worth completing; anything shorter
// returns an empty list rather than an error.
const minPrefixLen = 2

// suggestionFetchLimit bounds how many distinct values are pulled per field
// before ranking and truncation.
const suggestionFetchLimit = 200

// suggestionFields are the searchable completion sources, in the order used
// when no type filter is given.
var suggestionFields = []string{"title", "artist", "genre"}

// Suggest proposes completions for prefix among songs visible to the caller.
// typ filters to one of title/artist/genre; empty means all. An unknown typ
// is a validation error.
func (e *Engine) Suggest(ctx context.Context, scope models.Scope, prefix, typ string, limit int) ([]*models.Suggestion, error) {
	fields := suggestionFields
	if typ != "" {
		if !validSuggestionType(typ) {
			return nil, models.NewValidationError("type",
				fmt.Sprintf("must be one of %s", strings.Join(suggestionFields, ", ")))
		}
		fields = []string{typ}
	}

	prefix = strings.TrimSpace(prefix)
	if utf8.RuneCountInString(prefix) < minPrefixLen {
		return []*models.Suggestion{}, nil
	}

	if limit <= 0 {
		limit = e.config.SuggestionLimit
	}
	if limit > e.config.SuggestionMaxLimit {
		limit = e.config.SuggestionMaxLimit
	}

	needle := strings.ToLower(prefix)

	type candidate struct {
		suggestion *models.Suggestion
		position   int
	}
	byText := make(map[string]*candidate)
	var order []string

	for _, field := range fields {
		values, err := e.storage.SuggestionValues(ctx, scope, field, needle, suggestionFetchLimit)
		if err != nil {
			return nil, fmt.Errorf("suggestion lookup failed: %w", err)
		}
		for _, vc := range values {
			pos := strings.Index(strings.ToLower(vc.Value), needle)
			if pos < 0 {
				continue
			}
			if existing, ok := byText[vc.Value]; ok {
				// Deduplicate by exact text, keeping the strongest placement.
				if pos < existing.position {
					existing.position = pos
				}
				if vc.Count > existing.suggestion.SourceCount {
					existing.suggestion.SourceCount = vc.Count
				}
				continue
			}
			byText[vc.Value] = &candidate{
				suggestion: &models.Suggestion{Text: vc.Value, Type: field, SourceCount: vc.Count},
				position:   pos,
			}
			order = append(order, vc.Value)
		}
	}

	candidates := make([]*candidate, 0, len(order))
	for _, text := range order {
		candidates = append(candidates, byText[text])
	}

	// Prefix matches first, then frequency, then text for determinism.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].position != candidates[j].position {
			return candidates[i].position < candidates[j].position
		}
		if candidates[i].suggestion.SourceCount != candidates[j].suggestion.SourceCount {
			return candidates[i].suggestion.SourceCount > candidates[j].suggestion.SourceCount
		}
		return candidates[i].suggestion.Text < candidates[j].suggestion.Text
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	suggestions := make([]*models.Suggestion, len(candidates))
	for i, c := range candidates {
		suggestions[i] = c.suggestion
	}
	return suggestions, nil
}

func validSuggestionType(typ string) bool {
	for _, f := range suggestionFields {
		if f == typ {
			return true
		}
	}
	return false
}
