package chordpro

import (
	"strings"
	"testing"
)

const sample = `# A classic hymn
{title: Amazing Grace}
{artist: John Newton}
{genre: Gospel}
{key: G}
{tempo: 90}
{difficulty: Beginner}

[G]Amazing [G7]grace how [C]sweet the [G]sound
That [G]saved a [Em]wretch like [D]me
`

func TestParse_Directives(t *testing.T) {
	f := Parse([]byte(sample))
	if f.Title != "Amazing Grace" {
		t.Errorf("Title = %q", f.Title)
	}
	if f.Artist != "John Newton" {
		t.Errorf("Artist = %q", f.Artist)
	}
	if f.Genre != "Gospel" {
		t.Errorf("Genre = %q", f.Genre)
	}
	if f.Key != "G" {
		t.Errorf("Key = %q", f.Key)
	}
	if f.Tempo != 90 {
		t.Errorf("Tempo = %d", f.Tempo)
	}
	if f.Difficulty != "beginner" {
		t.Errorf("Difficulty = %q (should be lowercased)", f.Difficulty)
	}
}

func TestParse_LyricsStripped(t *testing.T) {
	f := Parse([]byte(sample))
	if strings.Contains(f.Lyrics, "[") || strings.Contains(f.Lyrics, "{") {
		t.Errorf("Lyrics contain markup: %q", f.Lyrics)
	}
	if !strings.Contains(f.Lyrics, "Amazing grace how sweet the sound") {
		t.Errorf("Lyrics = %q", f.Lyrics)
	}
	if strings.Contains(f.Lyrics, "classic hymn") {
		t.Error("comment line leaked into lyrics")
	}
}

func TestParse_ShortDirectives(t *testing.T) {
	f := Parse([]byte("{t: Short}\n{st: The Band}\nla la la"))
	if f.Title != "Short" {
		t.Errorf("Title = %q", f.Title)
	}
	if f.Artist != "The Band" {
		t.Errorf("Artist = %q (subtitle should fall back to artist)", f.Artist)
	}
}

func TestParse_ArtistDirectiveWinsOverSubtitle(t *testing.T) {
	f := Parse([]byte("{artist: Real Artist}\n{subtitle: Something Else}"))
	if f.Artist != "Real Artist" {
		t.Errorf("Artist = %q", f.Artist)
	}
}

func TestParse_BadTempoIgnored(t *testing.T) {
	f := Parse([]byte("{tempo: fast}"))
	if f.Tempo != 0 {
		t.Errorf("Tempo = %d", f.Tempo)
	}
}

func TestParse_InvalidUTF8Replaced(t *testing.T) {
	f := Parse([]byte{'{', 't', ':', ' ', 'A', 0xff, '}', '\n', 'l', 'a'})
	if f.Lyrics == "" {
		t.Error("lyrics dropped")
	}
	if !strings.Contains(f.Title, "A") {
		t.Errorf("Title = %q", f.Title)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	f := Parse(nil)
	if f.Title != "" || f.Lyrics != "" {
		t.Errorf("got %+v", f)
	}
}

func TestParse_UnknownDirectiveDropped(t *testing.T) {
	f := Parse([]byte("{capo: 3}\nverse line"))
	if f.Lyrics != "verse line" {
		t.Errorf("Lyrics = %q", f.Lyrics)
	}
}
