package models

import "fmt"

// Difficulty levels accepted by the difficulty filter.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Tempo filter bounds in BPM.
const (
	MinTempoBPM = 40
	MaxTempoBPM = 300
)

// ValidationError reports an invalid request value and the field that carried it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ValidDifficulty reports whether d is one of the enumerated difficulty levels.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// SearchFilters narrows a search to songs matching column-level predicates.
// Zero values mean "no constraint"; MinTempo/MaxTempo of 0 mean unset.
type SearchFilters struct {
	Genre      string `json:"genre,omitempty"`
	Key        string `json:"key,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	MinTempo   int    `json:"min_tempo,omitempty"`
	MaxTempo   int    `json:"max_tempo,omitempty"`
	Language   string `json:"language,omitempty"`
	// UserOnly restricts results to the caller's own songs instead of
	// own-plus-public.
	UserOnly bool `json:"user_only,omitempty"`
}

// Validate checks every filter value and rejects the whole set on the first
// invalid one. No partial application: a bad filter never silently drops out.
func (f *SearchFilters) Validate() error {
	if f.Difficulty != "" && !ValidDifficulty(f.Difficulty) {
		return NewValidationError("difficulty",
			fmt.Sprintf("must be one of %s, %s, %s", DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced))
	}
	if f.MinTempo != 0 && (f.MinTempo < MinTempoBPM || f.MinTempo > MaxTempoBPM) {
		return NewValidationError("min_tempo",
			fmt.Sprintf("must be between %d and %d BPM", MinTempoBPM, MaxTempoBPM))
	}
	if f.MaxTempo != 0 && (f.MaxTempo < MinTempoBPM || f.MaxTempo > MaxTempoBPM) {
		return NewValidationError("max_tempo",
			fmt.Sprintf("must be between %d and %d BPM", MinTempoBPM, MaxTempoBPM))
	}
	if f.MinTempo != 0 && f.MaxTempo != 0 && f.MinTempo > f.MaxTempo {
		return NewValidationError("min_tempo", "must not exceed max_tempo")
	}
	return nil
}
