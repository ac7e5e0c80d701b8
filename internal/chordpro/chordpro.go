// Package chordpro extracts song metadata and plain lyrics from ChordPro content.
package chordpro

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// File is the parsed form of a ChordPro file: directive metadata plus the
// lyrics text with directives and chord markers stripped.
type File struct {
	Title      string
	Artist     string
	Genre      string
	Key        string
	Tempo      int
	Language   string
	Difficulty string
	Lyrics     string
}

var (
	directiveRegex = regexp.MustCompile(`^\{\s*([a-zA-Z_]+)\s*:?\s*(.*?)\s*\}\s*$`)
	chordRegex     = regexp.MustCompile(`\[[^\]\r\n]*\]`)
)

// Parse reads ChordPro content and returns its metadata and lyrics. Invalid
// UTF-8 sequences are replaced with the replacement character. Unknown
// directives are dropped from the lyrics but otherwise ignored.
func Parse(content []byte) *File {
	text := string(content)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}

	f := &File{}
	var lyrics []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if m := directiveRegex.FindStringSubmatch(trimmed); m != nil {
			f.applyDirective(strings.ToLower(m[1]), m[2])
			continue
		}
		plain := strings.TrimSpace(chordRegex.ReplaceAllString(trimmed, ""))
		if plain != "" {
			lyrics = append(lyrics, plain)
		}
	}
	f.Lyrics = strings.Join(lyrics, "\n")
	return f
}

func (f *File) applyDirective(name, value string) {
	switch name {
	case "title", "t":
		f.Title = value
	case "artist":
		f.Artist = value
	case "subtitle", "st":
		// Common convention: the subtitle carries the artist when no
		// explicit artist directive is present.
		if f.Artist == "" {
			f.Artist = value
		}
	case "genre":
		f.Genre = value
	case "key", "k":
		f.Key = value
	case "tempo":
		if n, err := strconv.Atoi(value); err == nil {
			f.Tempo = n
		}
	case "language", "lang":
		f.Language = value
	case "difficulty":
		// Not a standard ChordPro directive, but the song library uses it to
		// carry the practice difficulty level.
		f.Difficulty = strings.ToLower(value)
	}
}
