package query

import (
	"reflect"
	"testing"
)

func TestParse_BareQueries(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"single word", "grace", []string{"grace"}},
		{"multi word is one implicit term", "amazing grace", []string{"amazing grace"}},
		{"mixed case lowered", "Amazing GRACE", []string{"amazing grace"}},
		{"extra whitespace collapsed", "  amazing   grace  ", []string{"amazing grace"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if !reflect.DeepEqual(got.AndTerms, tt.want) {
				t.Errorf("AndTerms = %v, want %v", got.AndTerms, tt.want)
			}
			if got.HasOperators {
				t.Error("HasOperators = true for bare query")
			}
			if len(got.Phrases) != 0 || len(got.OrTerms) != 0 || len(got.NotTerms) != 0 {
				t.Errorf("unexpected buckets: %+v", got)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		got := Parse(raw)
		if !got.IsEmpty() {
			t.Errorf("Parse(%q) not empty: %+v", raw, got)
		}
		if got.HasOperators {
			t.Errorf("Parse(%q).HasOperators = true", raw)
		}
	}
}

func TestParse_Phrases(t *testing.T) {
	got := Parse(`"Amazing Grace"`)
	if !reflect.DeepEqual(got.Phrases, []string{"amazing grace"}) {
		t.Errorf("Phrases = %v", got.Phrases)
	}
	if len(got.AndTerms) != 0 {
		t.Errorf("phrase also tokenized into AndTerms: %v", got.AndTerms)
	}
	if !got.HasOperators {
		t.Error("HasOperators = false for quoted phrase")
	}
}

func TestParse_PhraseWithTrailingTerms(t *testing.T) {
	got := Parse(`"Amazing Grace" rock`)
	if !reflect.DeepEqual(got.Phrases, []string{"amazing grace"}) {
		t.Errorf("Phrases = %v", got.Phrases)
	}
	if !reflect.DeepEqual(got.AndTerms, []string{"rock"}) {
		t.Errorf("AndTerms = %v", got.AndTerms)
	}
}

func TestParse_MultiplePhrasesInOrder(t *testing.T) {
	got := Parse(`"first phrase" middle "second phrase"`)
	if !reflect.DeepEqual(got.Phrases, []string{"first phrase", "second phrase"}) {
		t.Errorf("Phrases = %v", got.Phrases)
	}
	if !reflect.DeepEqual(got.AndTerms, []string{"middle"}) {
		t.Errorf("AndTerms = %v", got.AndTerms)
	}
}

func TestParse_UnclosedQuote(t *testing.T) {
	got := Parse(`say "hello world`)
	if len(got.Phrases) != 0 {
		t.Errorf("Phrases = %v for unclosed quote", got.Phrases)
	}
	// The quote character is dropped and the content treated as ordinary text.
	if !reflect.DeepEqual(got.AndTerms, []string{"say hello world"}) {
		t.Errorf("AndTerms = %v", got.AndTerms)
	}
}

func TestParse_AndOperator(t *testing.T) {
	got := Parse("rock AND beginner")
	if !reflect.DeepEqual(got.AndTerms, []string{"rock", "beginner"}) {
		t.Errorf("AndTerms = %v", got.AndTerms)
	}
	if !got.HasOperators {
		t.Error("HasOperators = false")
	}
}

func TestParse_OrFlattensAllTokens(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"gospel OR latin", []string{"gospel", "latin"}},
		{"gospel OR latin OR jazz", []string{"gospel", "latin", "jazz"}},
		// OR anywhere groups every plain token into the OR bucket.
		{"gospel latin OR jazz", []string{"gospel", "latin", "jazz"}},
	}
	for _, tt := range tests {
		got := Parse(tt.raw)
		if !reflect.DeepEqual(got.OrTerms, tt.want) {
			t.Errorf("Parse(%q).OrTerms = %v, want %v", tt.raw, got.OrTerms, tt.want)
		}
		if len(got.AndTerms) != 0 {
			t.Errorf("Parse(%q).AndTerms = %v, want empty", tt.raw, got.AndTerms)
		}
	}
}

func TestParse_Negation(t *testing.T) {
	tests := []struct {
		raw     string
		wantAnd []string
		wantNot []string
	}{
		{"rock NOT intermediate", []string{"rock"}, []string{"intermediate"}},
		{"rock -intermediate", []string{"rock"}, []string{"intermediate"}},
		{"NOT intermediate", nil, []string{"intermediate"}},
		{"-slow -fast hymn", []string{"hymn"}, []string{"slow", "fast"}},
	}
	for _, tt := range tests {
		got := Parse(tt.raw)
		if len(tt.wantAnd) == 0 && len(got.AndTerms) != 0 {
			t.Errorf("Parse(%q).AndTerms = %v, want empty", tt.raw, got.AndTerms)
		}
		if len(tt.wantAnd) > 0 && !reflect.DeepEqual(got.AndTerms, tt.wantAnd) {
			t.Errorf("Parse(%q).AndTerms = %v, want %v", tt.raw, got.AndTerms, tt.wantAnd)
		}
		if !reflect.DeepEqual(got.NotTerms, tt.wantNot) {
			t.Errorf("Parse(%q).NotTerms = %v, want %v", tt.raw, got.NotTerms, tt.wantNot)
		}
		if !got.HasOperators {
			t.Errorf("Parse(%q).HasOperators = false", tt.raw)
		}
	}
}

func TestParse_OperatorKeywordsAreCaseSensitive(t *testing.T) {
	// Lowercase "and"/"or"/"not" are ordinary words, so the whole query is
	// one implicit term.
	got := Parse("this and that")
	if !reflect.DeepEqual(got.AndTerms, []string{"this and that"}) {
		t.Errorf("AndTerms = %v", got.AndTerms)
	}
	if got.HasOperators {
		t.Error("HasOperators = true for lowercase connectives")
	}
}

func TestParse_OperatorOnlyFallsOpen(t *testing.T) {
	for _, raw := range []string{"AND", "OR", "NOT"} {
		got := Parse(raw)
		if got.HasOperators {
			t.Errorf("Parse(%q).HasOperators = true", raw)
		}
		if len(got.AndTerms) != 1 {
			t.Fatalf("Parse(%q).AndTerms = %v", raw, got.AndTerms)
		}
	}
}

func TestParse_DuplicateTermsDeduplicated(t *testing.T) {
	got := Parse("rock AND rock AND blues")
	if !reflect.DeepEqual(got.AndTerms, []string{"rock", "blues"}) {
		t.Errorf("AndTerms = %v", got.AndTerms)
	}
}

func TestParse_RawQueryEchoed(t *testing.T) {
	raw := `  "Amazing Grace" -slow  `
	if got := Parse(raw); got.RawQuery != raw {
		t.Errorf("RawQuery = %q, want %q", got.RawQuery, raw)
	}
}

func TestParse_MaliciousInputIsLiteralText(t *testing.T) {
	tests := []string{
		"<script>alert(1)</script>",
		"'; DROP TABLE songs; --",
		"../../../etc/passwd",
		"%00%0a",
	}
	for _, raw := range tests {
		got := Parse(raw)
		if got.IsEmpty() {
			t.Errorf("Parse(%q) produced empty query", raw)
		}
	}
}

func TestPositiveTerms(t *testing.T) {
	got := Parse("rock AND blues -slow")
	want := []string{"rock", "blues"}
	if !reflect.DeepEqual(got.PositiveTerms(), want) {
		t.Errorf("PositiveTerms() = %v, want %v", got.PositiveTerms(), want)
	}
}
