// Package models defines core data structures for songs, filters, and search results.
package models

import "time"

// Song represents a stored song with its ChordPro content and metadata.
type Song struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Title      string    `json:"title" db:"title"`
	Artist     string    `json:"artist,omitempty" db:"artist"`
	Genre      string    `json:"genre,omitempty" db:"genre"`
	Key        string    `json:"key,omitempty" db:"song_key"`
	Difficulty string    `json:"difficulty,omitempty" db:"difficulty"`
	Tempo      int       `json:"tempo,omitempty" db:"tempo"`
	Language   string    `json:"language,omitempty" db:"language"`
	Content    string    `json:"content" db:"content"`
	IsPublic   bool      `json:"is_public" db:"is_public"`
	SourcePath string    `json:"source_path,omitempty" db:"source_path"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// SongInput is the input for creating or updating a song.
type SongInput struct {
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	Genre      string `json:"genre,omitempty"`
	Key        string `json:"key,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Tempo      int    `json:"tempo,omitempty"`
	Language   string `json:"language,omitempty"`
	Content    string `json:"content"`
	IsPublic   bool   `json:"is_public"`
}

// Scope identifies the caller for visibility decisions. A song is visible to a
// caller when they own it or it is public.
type Scope struct {
	UserID string
}
