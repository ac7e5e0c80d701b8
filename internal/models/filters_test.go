package models

import (
	"errors"
	"testing"
)

func TestSearchFilters_Validate(t *testing.T) {
	tests := []struct {
		name      string
		filters   SearchFilters
		wantField string
	}{
		{"empty is valid", SearchFilters{}, ""},
		{"valid difficulty", SearchFilters{Difficulty: DifficultyBeginner}, ""},
		{"unknown difficulty", SearchFilters{Difficulty: "expert"}, "difficulty"},
		{"valid tempo range", SearchFilters{MinTempo: 60, MaxTempo: 120}, ""},
		{"min tempo too low", SearchFilters{MinTempo: 20}, "min_tempo"},
		{"min tempo too high", SearchFilters{MinTempo: 301}, "min_tempo"},
		{"max tempo too low", SearchFilters{MaxTempo: 39}, "max_tempo"},
		{"max tempo too high", SearchFilters{MaxTempo: 400}, "max_tempo"},
		{"inverted bounds", SearchFilters{MinTempo: 180, MaxTempo: 90}, "min_tempo"},
		{"bounds at limits", SearchFilters{MinTempo: 40, MaxTempo: 300}, ""},
		{"genre never validated", SearchFilters{Genre: "anything at all"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filters.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestValidDifficulty(t *testing.T) {
	for _, d := range []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced} {
		if !ValidDifficulty(d) {
			t.Errorf("ValidDifficulty(%q) = false", d)
		}
	}
	for _, d := range []string{"", "expert", "Beginner", "BEGINNER"} {
		if ValidDifficulty(d) {
			t.Errorf("ValidDifficulty(%q) = true", d)
		}
	}
}
