// Package storage defines the persistence interface for songs.
package storage

import (
	"context"

	"github.com/chordme/songsearch/internal/models"
	"github.com/chordme/songsearch/internal/query"
)

// ValueCount is a distinct field value with the number of visible songs
// carrying it. Used by the suggestion engine.
type ValueCount struct {
	Value string
	Count int
}

// Storage defines song persistence and candidate selection operations.
//
// Every read that returns songs is scope-aware: callers see their own songs
// plus public ones, never another user's private songs.
type Storage interface {
	CreateSong(ctx context.Context, song *models.Song) error
	GetSong(ctx context.Context, id string) (*models.Song, error)
	GetSongBySourcePath(ctx context.Context, path string) (*models.Song, error)
	UpdateSong(ctx context.Context, song *models.Song) error
	DeleteSong(ctx context.Context, id string) error
	ListSongs(ctx context.Context, scope models.Scope, offset, limit int) ([]*models.Song, error)

	// SearchCandidates returns the visible songs satisfying the column
	// filters, pre-narrowed by the parsed query's positive term buckets. The
	// returned set is a superset of what the ranker will accept.
	SearchCandidates(ctx context.Context, scope models.Scope, filters *models.SearchFilters, parsed *query.ParsedQuery) ([]*models.Song, error)

	// SuggestionValues returns distinct non-empty values of field among
	// visible songs that contain needle case-insensitively, with counts.
	SuggestionValues(ctx context.Context, scope models.Scope, field, needle string, limit int) ([]*ValueCount, error)

	CountSongs(ctx context.Context) (int64, error)

	Close() error
}
